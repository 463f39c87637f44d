package scoringservice

import "errors"

var (
	// ErrGameNotFound is returned when a game id has no stored definition.
	ErrGameNotFound = errors.New("game not found")

	// ErrPlayerNotInGame is returned when a player has no round in the game.
	ErrPlayerNotInGame = errors.New("player is not in this game")

	// ErrHoleNotInGame is returned when a score names a hole the game does not play.
	ErrHoleNotInGame = errors.New("hole is not part of this game")

	// ErrSpecNotFound is returned when the catalog has no matching spec.
	ErrSpecNotFound = errors.New("game spec not found")

	// ErrGameIDRequired is returned when a game is saved without an id.
	ErrGameIDRequired = errors.New("game id is required")

	// ErrUnrecognizedPlayedAt is returned when a played-at date cannot be read.
	ErrUnrecognizedPlayedAt = errors.New("unrecognized played-at date")

	// ErrPlayedAtInFuture is returned for rounds dated after today.
	ErrPlayedAtInFuture = errors.New("played-at date is in the future")

	// ErrInvalidPot is returned when a settlement pot is negative.
	ErrInvalidPot = errors.New("pot must not be negative")
)
