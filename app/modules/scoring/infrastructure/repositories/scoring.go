package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scoring repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetGame retrieves a game definition by id.
func (r *Impl) GetGame(ctx context.Context, db bun.IDB, gameID string) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// UpsertGame creates or replaces a game definition.
func (r *Impl) UpsertGame(ctx context.Context, db bun.IDB, game *Game) error {
	db = r.resolveDB(db)
	game.SpecName = game.Definition.Spec.Name
	game.SpecVersion = game.Definition.Spec.Version
	game.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(game).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("spec_name = EXCLUDED.spec_name").
		Set("spec_version = EXCLUDED.spec_version").
		Set("definition = EXCLUDED.definition").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the last computed scoreboard of a game.
func (r *Impl) GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*Snapshot, error) {
	db = r.resolveDB(db)
	snapshot := new(Snapshot)
	err := db.NewSelect().
		Model(snapshot).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snapshot, nil
}

// SaveSnapshot creates or replaces the scoreboard snapshot of a game.
func (r *Impl) SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *Snapshot) error {
	db = r.resolveDB(db)
	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = time.Now()
	}
	_, err := db.NewInsert().
		Model(snapshot).
		On("CONFLICT (game_id) DO UPDATE").
		Set("hash = EXCLUDED.hash").
		Set("scoreboard = EXCLUDED.scoreboard").
		Set("computed_at = EXCLUDED.computed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// CreatePosting stores a new posting record.
func (r *Impl) CreatePosting(ctx context.Context, db bun.IDB, posting *Posting) error {
	db = r.resolveDB(db)
	if posting.ID == uuid.Nil {
		posting.ID = uuid.New()
	}
	if posting.Status == "" {
		posting.Status = PostingPending
	}
	if _, err := db.NewInsert().Model(posting).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create posting: %w", err)
	}
	return nil
}

// GetPosting retrieves a posting by id.
func (r *Impl) GetPosting(ctx context.Context, db bun.IDB, id uuid.UUID) (*Posting, error) {
	db = r.resolveDB(db)
	posting := new(Posting)
	err := db.NewSelect().
		Model(posting).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return posting, nil
}

// UpdatePostingStatus records the outcome of a submission attempt and bumps
// the attempt counter.
func (r *Impl) UpdatePostingStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status PostingStatus, externalID, lastError string) error {
	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*Posting)(nil)).
		Set("status = ?", status).
		Set("attempts = attempts + 1").
		Set("last_error = NULLIF(?, '')", lastError).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)
	if externalID != "" {
		q = q.Set("external_id = ?", externalID)
	}
	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update posting status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPostings returns the postings of a game, oldest first.
func (r *Impl) ListPostings(ctx context.Context, db bun.IDB, gameID string) ([]Posting, error) {
	db = r.resolveDB(db)
	var postings []Posting
	err := db.NewSelect().
		Model(&postings).
		Where("game_id = ?", gameID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	return postings, nil
}
