package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	scoringmigrations "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/golf-scoring/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "scoring database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadDSN(c *cli.Context) (string, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return "", fmt.Errorf("postgres dsn is not configured (set DATABASE_URL)")
	}
	return cfg.Postgres.DSN, nil
}

// withMigrator opens the database for one command and closes it afterwards.
func withMigrator(c *cli.Context, fn func(m *migrate.Migrator) error) error {
	dsn, err := loadDSN(c)
	if err != nil {
		return err
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	return fn(migrate.NewMigrator(db, scoringmigrations.Migrations,
		migrate.WithTableName("scoring_bun_migrations"),
		migrate.WithLocksTableName("scoring_bun_migration_locks"),
	))
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "scoring schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No new migrations to run")
						} else {
							fmt.Printf("Migrated to %s\n", group)
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Println("No groups to roll back")
						} else {
							fmt.Printf("Rolled back %s\n", group)
						}
						return nil
					})
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						mf, err := m.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:  "create_sql",
				Usage: "create up and down SQL migrations",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						name := strings.Join(c.Args().Slice(), "_")
						files, err := m.CreateSQLMigrations(c.Context, name)
						if err != nil {
							return err
						}
						for _, mf := range files {
							fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations: %s\n", ms)
						fmt.Printf("Applied: %s\n", ms.Applied())
						fmt.Printf("Unapplied: %s\n", ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}

// withRiverMigrator runs fn against the River schema migrator.
func withRiverMigrator(c *cli.Context, fn func(ctx context.Context, m *rivermigrate.Migrator[pgx.Tx]) error) error {
	dsn, err := loadDSN(c)
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(c.Context, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	return fn(c.Context, migrator)
}

func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "posting queue schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all River migrations",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(ctx context.Context, m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
						if err != nil {
							return err
						}
						printRiverVersions("Applied", res)
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last River migration",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(ctx context.Context, m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(ctx, rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: 1})
						if err != nil {
							return err
						}
						printRiverVersions("Rolled back", res)
						return nil
					})
				},
			},
		},
	}
}

func printRiverVersions(verb string, res *rivermigrate.MigrateResult) {
	if len(res.Versions) == 0 {
		fmt.Println("No River migrations to run")
		return
	}
	for _, v := range res.Versions {
		fmt.Printf("%s River migration %03d\n", verb, v.Version)
	}
}
