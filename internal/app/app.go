package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"airdrop-go/internal/config"
	"airdrop-go/internal/repositories"
	"airdrop-go/internal/scheduler"
	"airdrop-go/internal/services/assistant"
	"airdrop-go/internal/services/catalog"
	"airdrop-go/internal/services/loading"
	"airdrop-go/internal/telegram"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	Config    *config.Config
	DB        *sqlx.DB
	Repo      repositories.ProjectRepository
	Loader    *loading.Service
	Catalog   *catalog.Service
	Assistant *assistant.Dispatcher
	Scheduler *scheduler.Scheduler
	Bot       *telegram.Bot
	Server    *http.Server

	log    *slog.Logger
	ownsDB bool
}

// Run serves the HTTP API, and the Telegram bot and refresh scheduler when
// configured, until ctx is cancelled. It then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(); err != nil {
			return err
		}
		defer a.Scheduler.Stop()
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.log.Info("HTTP server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.Bot != nil {
		group.Go(func() error {
			return a.Bot.Run(gctx)
		})
	}

	group.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (a *App) Close() {
	if a.ownsDB && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.log.Error("close store", "error", err)
		}
	}
}
