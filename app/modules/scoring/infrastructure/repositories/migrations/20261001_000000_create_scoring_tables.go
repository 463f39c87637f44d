package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS scoring_games (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					spec_name TEXT NOT NULL,
					spec_version INTEGER NOT NULL DEFAULT 0,
					definition JSONB NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_games_spec ON scoring_games(spec_name, spec_version);
			`); err != nil {
				return fmt.Errorf("failed to create scoring_games table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS scoring_snapshots (
					game_id TEXT PRIMARY KEY REFERENCES scoring_games(id) ON DELETE CASCADE,
					hash TEXT NOT NULL,
					scoreboard JSONB NOT NULL,
					computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create scoring_snapshots table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS scoring_postings (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					game_id TEXT NOT NULL REFERENCES scoring_games(id) ON DELETE CASCADE,
					round_id TEXT NOT NULL,
					player_id TEXT NOT NULL,
					golfer_id TEXT NOT NULL,
					payload JSONB NOT NULL,
					adjustments JSONB,
					status VARCHAR(16) NOT NULL DEFAULT 'pending',
					attempts INTEGER NOT NULL DEFAULT 0,
					external_id TEXT,
					last_error TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_postings_game ON scoring_postings(game_id, created_at);
				CREATE INDEX IF NOT EXISTS idx_scoring_postings_status ON scoring_postings(status);
			`); err != nil {
				return fmt.Errorf("failed to create scoring_postings table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"scoring_postings", "scoring_snapshots", "scoring_games"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+";"); err != nil {
					return fmt.Errorf("failed to drop %s table: %w", table, err)
				}
			}
			return nil
		})
	})
}
