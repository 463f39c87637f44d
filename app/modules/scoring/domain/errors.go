package scoringdomain

import (
	"errors"
	"fmt"
)

// ConfigurationError means the game format itself is broken. It aborts the
// whole computation and is never retried.
type ConfigurationError struct {
	Spec   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Spec == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error in spec %s: %s", e.Spec, e.Reason)
}

// PostingError means a round cannot be submitted to the handicap authority.
type PostingError struct {
	RoundID string
	Reason  string
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("round %s cannot be posted: %s", e.RoundID, e.Reason)
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsPostingError reports whether err wraps a PostingError.
func IsPostingError(err error) bool {
	var pe *PostingError
	return errors.As(err, &pe)
}

// WarningCode classifies incomplete data.
type WarningCode string

const (
	WarnHoleUnscored      WarningCode = "hole_unscored"
	WarnMissingHandicap   WarningCode = "missing_handicap"
	WarnInvalidExpression WarningCode = "invalid_expression"
	WarnUnknownHole       WarningCode = "unknown_hole"
	WarnSkinsPending      WarningCode = "skins_pending"
	WarnNoTeams           WarningCode = "no_teams"
	WarnMissingTee        WarningCode = "missing_tee"
	WarnUnknownPlayer     WarningCode = "unknown_player"
)

// Warning is incomplete data recovered locally and shown to the user.
type Warning struct {
	Hole     int         `json:"hole,omitempty"`
	PlayerID string      `json:"player_id,omitempty"`
	Option   string      `json:"option,omitempty"`
	Code     WarningCode `json:"code"`
	Message  string      `json:"message"`
}
