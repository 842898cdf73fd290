package main

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/wordle-bot/app"
	wordlequeue "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/queue"
	wordlemigrations "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// withMigrator opens the SQL store and hands a migrator to fn.
func withMigrator(c *cli.Context, fn func(*migrate.Migrator, *config.Config) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Store.Driver == config.DriverRedis {
		return fmt.Errorf("the redis store has no schema to migrate")
	}

	store, err := app.OpenStore(c.Context, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(migrate.NewMigrator(store.DB, wordlemigrations.Migrations), cfg)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ *config.Config) error {
						fmt.Fprintln(c.App.Writer, "Initializing wordle migrations")
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "up",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, cfg *config.Config) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Fprintln(c.App.Writer, "No new migrations to run")
						} else {
							fmt.Fprintf(c.App.Writer, "Migrated to %s\n", group)
						}

						if cfg.Store.Driver == config.DriverPostgres && cfg.Queue.Enabled {
							obs := newObservability(cfg)
							if err := wordlequeue.Migrate(c.Context, cfg.Store.DSN, obs.Logger); err != nil {
								return err
							}
							fmt.Fprintln(c.App.Writer, "River migrations applied")
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ *config.Config) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Fprintln(c.App.Writer, "No groups to roll back")
						} else {
							fmt.Fprintf(c.App.Writer, "Rolled back %s\n", group)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrator, _ *config.Config) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "Migrations: %s\n", ms)
						fmt.Fprintf(c.App.Writer, "  Applied: %s\n", strings.TrimSpace(ms.Applied().String()))
						fmt.Fprintf(c.App.Writer, "  Unapplied: %s\n", strings.TrimSpace(ms.Unapplied().String()))
						return nil
					})
				},
			},
		},
	}
}
