package scoringdb

import (
	"time"

	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Game is a stored game definition. The whole domain game, spec included, is
// kept as one JSON document so a recompute never depends on the live catalog.
type Game struct {
	bun.BaseModel `bun:"table:scoring_games,alias:g"`

	ID          string             `bun:"id,pk"`
	Name        string             `bun:"name,notnull"`
	SpecName    string             `bun:"spec_name,notnull"`
	SpecVersion int                `bun:"spec_version,notnull"`
	Definition  scoringdomain.Game `bun:"definition,type:jsonb,notnull"`
	CreatedAt   time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Snapshot is the last scoreboard computed for a game.
type Snapshot struct {
	bun.BaseModel `bun:"table:scoring_snapshots,alias:s"`

	GameID     string                   `bun:"game_id,pk"`
	Hash       string                   `bun:"hash,notnull"`
	Scoreboard scoringdomain.Scoreboard `bun:"scoreboard,type:jsonb,notnull"`
	ComputedAt time.Time                `bun:"computed_at,notnull"`
}

// PostingStatus tracks a submission to the handicap authority.
type PostingStatus string

const (
	PostingPending   PostingStatus = "pending"
	PostingSubmitted PostingStatus = "submitted"
	PostingFailed    PostingStatus = "failed"
)

// Posting is a round queued for, or already sent to, the handicap authority.
type Posting struct {
	bun.BaseModel `bun:"table:scoring_postings,alias:p"`

	ID          uuid.UUID                      `bun:"id,pk,type:uuid"`
	GameID      string                         `bun:"game_id,notnull"`
	RoundID     string                         `bun:"round_id,notnull"`
	PlayerID    string                         `bun:"player_id,notnull"`
	GolferID    string                         `bun:"golfer_id,notnull"`
	Payload     scoringdomain.PostingPayload   `bun:"payload,type:jsonb,notnull"`
	Adjustments []scoringdomain.HoleAdjustment `bun:"adjustments,type:jsonb"`
	Status      PostingStatus                  `bun:"status,notnull"`
	Attempts    int                            `bun:"attempts,notnull,default:0"`
	ExternalID  string                         `bun:"external_id,nullzero"`
	LastError   string                         `bun:"last_error,nullzero"`
	CreatedAt   time.Time                      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time                      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
