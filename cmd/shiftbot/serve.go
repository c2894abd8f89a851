package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiftbot/internal/album"
	"shiftbot/internal/correlation"
	"shiftbot/internal/domain"
	"shiftbot/internal/handler"
	"shiftbot/internal/housekeeping"
	"shiftbot/internal/telegram"
	"shiftbot/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	pollTimeout     = 30
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, background sweepers and the ops HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg, logger := a.cfg, a.logger

	if err := cfg.Validate(); err != nil {
		return err
	}
	admins, err := cfg.AdminRegistry()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now := func() time.Time { return time.Now().In(loc) }

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}()

	// Telegram
	client, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		return err
	}
	logger.WithField("bot", client.Username()).Info("Bot authorized")

	// Состояние ожидающих календарей и альбомов
	pending := correlation.NewStore[domain.PendingPosting](correlation.WithTTL(cfg.CorrelationTTL))
	albums := album.NewAggregator(cfg.AlbumTTL, now)

	// Use Cases
	ucLog := usecase.WithLogger(logger.WithField("component", "usecase"))
	postingUC := usecase.NewPostingUseCase(st.users, st.shifts, client, pending, albums, ucLog, usecase.WithClock(now))
	browseUC := usecase.NewBrowseUseCase(st.users, st.shifts, st.stats, admins, client, ucLog)
	membershipUC := usecase.NewMembershipUseCase(st.users, admins, client, ucLog)
	statsUC := usecase.NewStatsUseCase(st.stats, st.shifts)

	// Handlers
	bot := handler.NewBotHandler(postingUC, browseUC, membershipUC, client, admins, version, logger).WithClock(now)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(handler.LoggingMiddleware(logger))
	handler.NewAPIHandler(statsUC, st.pinger, logger).Register(e, cfg.OpsToken)

	purger := housekeeping.NewPurger(st.shifts, loc, cfg.PurgeInterval, logger.WithField("component", "housekeeping"))
	poller := telegram.NewPoller(client, pollTimeout, logger.WithField("component", "poller"))
	updates := make(chan domain.Update, cfg.Workers*4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx, updates) })
	g.Go(func() error { return bot.Run(gctx, updates, cfg.Workers) })
	g.Go(func() error { return pending.Run(gctx, cfg.SweepInterval) })
	g.Go(func() error { return albums.Run(gctx, cfg.SweepInterval) })
	g.Go(func() error { return purger.Run(gctx) })
	g.Go(func() error {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	logger.WithFields(logrus.Fields{
		"storage": cfg.Storage,
		"workers": cfg.Workers,
		"port":    cfg.HTTPPort,
	}).Info("Shiftbot started")

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shiftbot exited")
	return nil
}
