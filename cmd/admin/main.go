package main

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	appMigrations "github.com/yigit/abiturient/internal/app/migrations"
	appRepos "github.com/yigit/abiturient/internal/app/repositories"
	"github.com/yigit/abiturient/internal/bootstrap"
	"github.com/yigit/abiturient/internal/db"
	"github.com/yigit/abiturient/internal/pkg/logger"
	"github.com/yigit/abiturient/internal/seed"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		os.Exit(1)
	}

	var pool *pgxpool.Pool
	cli := &commandLine{
		out: os.Stdout,
		connect: func(ctx context.Context) (*backend, error) {
			database, err := db.NewPostgresDB(ctx, cfg)
			if err != nil {
				return nil, err
			}
			pool = database.Pool
			return &backend{
				users: appRepos.NewUserRepository(pool),
				migrate: func(ctx context.Context) ([]string, error) {
					return appMigrations.NewMigrator(pool, appMigrations.Embedded()).Up(ctx)
				},
				seed: func(ctx context.Context) (*seed.Result, error) {
					opts := seed.Options{AdminEmail: cfg.Seed.AdminEmail, AdminPassword: cfg.Seed.AdminPassword}
					return seed.CreateDefaultData(ctx, pool, opts, lgr)
				},
			}, nil
		},
	}

	err = cli.run(context.Background(), os.Args)
	if pool != nil {
		pool.Close()
	}
	switch {
	case errors.Is(err, errHelp):
		os.Exit(2)
	case err != nil:
		logger.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}
