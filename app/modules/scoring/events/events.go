// Package scoringevents defines the topics and payloads the scoring module
// consumes and emits on the event bus.
package scoringevents

import (
	"time"

	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Inbound topics.
const (
	ScoreRecordRequestedV1   = "scoring.score.record.requested.v1"
	GameRecomputeRequestedV1 = "scoring.game.recompute.requested.v1"
	PostingRequestedV1       = "scoring.posting.requested.v1"
)

// Outbound topics.
const (
	ScoreboardUpdatedV1      = "scoring.scoreboard.updated.v1"
	MultipliersInvalidatedV1 = "scoring.multipliers.invalidated.v1"
	ScoreRecordFailedV1      = "scoring.score.record.failed.v1"
	GameRecomputeFailedV1    = "scoring.game.recompute.failed.v1"
	PostingQueuedV1          = "scoring.posting.queued.v1"
	PostingFailedV1          = "scoring.posting.failed.v1"
)

// ScoreRecordRequestedPayloadV1 asks for one hole value to be recorded.
type ScoreRecordRequestedPayloadV1 struct {
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	Hole       int       `json:"hole"`
	Key        string    `json:"key,omitempty"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// ScoreRecordFailedPayloadV1 reports a rejected hole value.
type ScoreRecordFailedPayloadV1 struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Hole     int    `json:"hole"`
	Reason   string `json:"reason"`
}

// GameRecomputeRequestedPayloadV1 asks for a stored game to be rescored.
type GameRecomputeRequestedPayloadV1 struct {
	GameID string `json:"game_id"`
}

// GameRecomputeFailedPayloadV1 reports a game that could not be rescored.
type GameRecomputeFailedPayloadV1 struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// ScoreboardUpdatedPayloadV1 carries a scoreboard whose contents changed.
type ScoreboardUpdatedPayloadV1 struct {
	GameID     string                   `json:"game_id"`
	Scoreboard scoringdomain.Scoreboard `json:"scoreboard"`
}

// MultipliersInvalidatedPayloadV1 lists user multipliers an edit made unavailable.
type MultipliersInvalidatedPayloadV1 struct {
	GameID        string                       `json:"game_id"`
	EditedHole    int                          `json:"edited_hole"`
	Invalidations []scoringdomain.Invalidation `json:"invalidations"`
}

// PostingRequestedPayloadV1 asks for a player's round to be posted.
type PostingRequestedPayloadV1 struct {
	GameID    string `json:"game_id"`
	PlayerID  string `json:"player_id"`
	ScoreType string `json:"score_type,omitempty"`
}

// PostingQueuedPayloadV1 confirms a stored posting awaiting submission.
type PostingQueuedPayloadV1 struct {
	GameID             string    `json:"game_id"`
	PlayerID           string    `json:"player_id"`
	PostingID          uuid.UUID `json:"posting_id"`
	AdjustedGrossScore int       `json:"adjusted_gross_score"`
}

// PostingFailedPayloadV1 reports a round that could not be posted.
type PostingFailedPayloadV1 struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}
