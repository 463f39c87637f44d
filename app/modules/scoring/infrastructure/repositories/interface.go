package scoringdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for scoring persistence.
type Repository interface {
	// GetGame retrieves a game definition by id.
	GetGame(ctx context.Context, db bun.IDB, gameID string) (*Game, error)

	// UpsertGame creates or replaces a game definition.
	UpsertGame(ctx context.Context, db bun.IDB, game *Game) error

	// GetSnapshot retrieves the last computed scoreboard of a game.
	GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*Snapshot, error)

	// SaveSnapshot creates or replaces the scoreboard snapshot of a game.
	SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *Snapshot) error

	// CreatePosting stores a new posting record.
	CreatePosting(ctx context.Context, db bun.IDB, posting *Posting) error

	// GetPosting retrieves a posting by id.
	GetPosting(ctx context.Context, db bun.IDB, id uuid.UUID) (*Posting, error)

	// UpdatePostingStatus records the outcome of a submission attempt.
	UpdatePostingStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status PostingStatus, externalID, lastError string) error

	// ListPostings returns the postings of a game, oldest first.
	ListPostings(ctx context.Context, db bun.IDB, gameID string) ([]Posting, error)
}
