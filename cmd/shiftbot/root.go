package main

import (
	"context"
	"fmt"

	"shiftbot/internal/config"
	"shiftbot/internal/database"
	"shiftbot/internal/domain"
	"shiftbot/internal/handler"
	"shiftbot/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app общее состояние подкоманд.
type app struct {
	cfg    config.Config
	logger *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{logger: logrus.New()}
	a.logger.SetFormatter(&logrus.JSONFormatter{})

	cmd := &cobra.Command{
		Use:          "shiftbot",
		Short:        "Telegram bot for swapping work shifts inside an organisation",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				a.logger.Debugf(".env not found: %v", err)
			}
			a.cfg = cfg

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
			}
			a.logger.SetLevel(level)
			return nil
		},
	}

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newPurgeCommand(a))

	return cmd
}

// storage репозитории выбранного хранилища.
type storage struct {
	users  domain.UserRepository
	shifts domain.ShiftRepository
	stats  domain.StatsRepository
	pinger handler.Pinger
	close  func() error
}

func openStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		m := repository.NewMemory()
		return &storage{
			users:  m.Users(),
			shifts: m.Shifts(),
			stats:  m.Stats(),
			close:  func() error { return nil },
		}, nil
	}

	// База данных (database/sql) и миграции
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	logger.Info("Database connected")

	// SQLC queries
	queries := database.New(db)

	return &storage{
		users:  repository.NewUserRepository(db, queries),
		shifts: repository.NewShiftRepository(db, queries),
		stats:  repository.NewStatsRepository(queries),
		pinger: db,
		close:  db.Close,
	}, nil
}
