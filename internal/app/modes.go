package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/server"
	"github.com/alanyoungcy/slipscan/internal/server/handler"
	"github.com/alanyoungcy/slipscan/internal/server/ws"
	"github.com/alanyoungcy/slipscan/internal/service"
)

// reparseLockTTL bounds how long the reparse lock is held if the process dies
// mid-run.
const reparseLockTTL = 30 * time.Minute

// ServeMode runs the HTTP + WebSocket API server, the event hub, and the
// retention janitor when enabled. It blocks until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	maxUpload := int64(a.cfg.Server.MaxUploadMB) * 1024 * 1024
	defaultHours := int(a.cfg.Server.DefaultWindow.Duration / time.Hour)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Status:  handler.NewStatusHandler(a.cfg.Mode, deps.OCRAvailable, service.ParseVersion),
		Bets:    handler.NewBetHandler(deps.Bets, maxUpload, defaultHours, a.logger),
		Risk:    handler.NewRiskHandler(deps.Reports, a.logger),
		Sets:    handler.NewSetHandler(deps.SetStore, deps.BookmakerStore, a.logger),
		Imports: handler.NewImportHandler(deps.Imports, deps.ImportStore, maxUpload, a.logger),
		Files:   handler.NewFileHandler(deps.BlobReader, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if a.cfg.Retention.Enabled && deps.Janitor != nil {
		g.Go(func() error {
			return a.runJanitor(ctx, deps)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runJanitor sweeps expired slip images on the configured interval.
func (a *App) runJanitor(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Retention.Interval.Duration
	a.logger.InfoContext(ctx, "retention janitor started",
		slog.Duration("interval", interval),
		slog.Duration("max_age", a.cfg.Retention.MaxAge.Duration),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := deps.Janitor.Sweep(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "retention sweep failed",
					slog.Int("removed", removed),
					slog.String("error", err.Error()),
				)
				continue
			}
			if removed > 0 {
				a.logger.InfoContext(ctx, "retention sweep finished",
					slog.Int("removed", removed),
				)
			}
		}
	}
}

// ReparseMode re-runs the current extractor over bets stored with an older
// parse version, then exits. A distributed lock keeps concurrent deployments
// from reparsing the same rows twice.
func (a *App) ReparseMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting reparse mode")

	unlock, err := deps.LockManager.Acquire(ctx, "reparse", reparseLockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			a.logger.WarnContext(ctx, "reparse already running elsewhere, exiting")
			return nil
		}
		return err
	}
	defer unlock()

	updated, err := deps.Bets.Reparse(ctx)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "reparse finished",
		slog.Int("updated", updated),
	)
	return nil
}
