package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Skotchmaster/silkroad/internal/migrations"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/config"
	pkgdb "github.com/Skotchmaster/silkroad/pkg/db"
	"github.com/Skotchmaster/silkroad/pkg/logging"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					return migrateUp(c.Context, config.Load())
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations (postgres only)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1},
				},
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
					if pkgdb.IsSQLite(cfg.DatabaseURL) {
						return fmt.Errorf("down migrations need postgres")
					}
					return migrations.Down(cfg.DatabaseURL, c.Int("steps"))
				},
			},
		},
	}
}

func migrateUp(ctx context.Context, cfg config.Config) error {
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	l := logging.New(cfg.LogLevel).With("cmd", "migrate")

	if pkgdb.IsSQLite(cfg.DatabaseURL) {
		db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
		l.Info("sqlite_schema_ready")
		return nil
	}

	v, err := migrations.Up(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	l.Info("migrations_applied", "version", v)
	return nil
}
