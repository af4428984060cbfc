package main

import (
	"github.com/urfave/cli/v2"

	"github.com/Skotchmaster/silkroad/internal/account"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/config"
	pkgdb "github.com/Skotchmaster/silkroad/pkg/db"
	"github.com/Skotchmaster/silkroad/pkg/logging"
)

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "register an account with the admin role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
			l := logging.New(cfg.LogLevel).With("cmd", "create-admin")
			ctx := logging.IntoContext(c.Context, l)

			db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			svc := &account.Service{Repo: &repo.GormRepo{DB: db}}

			u, err := svc.Register(ctx, account.RegisterRequest{
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}
			if err := svc.GrantAdmin(ctx, u.ID); err != nil {
				return err
			}
			l.Info("admin_created", "user_id", u.ID)
			return nil
		},
	}
}
