package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidhsu/binfolio/internal/portfolio"
	"github.com/davidhsu/binfolio/internal/server"
	"github.com/davidhsu/binfolio/internal/server/handler"
	"github.com/davidhsu/binfolio/internal/service"
)

// ServerMode runs the HTTP API until the context is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// SnapshotMode builds one portfolio snapshot, writes it as CSV to stdout, and
// exits. When S3 archival is wired the snapshot is uploaded as well.
func (a *App) SnapshotMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting snapshot mode")

	summary, err := deps.Portfolio.Snapshot(ctx)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "snapshot built",
		slog.Int("rows", len(summary.Rows)),
		slog.String("total_market_value", summary.TotalMarketValue.StringFixed(2)),
		slog.String("total_unrealized_pnl", summary.TotalUnrealizedPnL.StringFixed(2)),
		slog.String("total_realized_pnl", summary.TotalRealizedPnL.StringFixed(2)),
		slog.Int("unpriced", len(summary.Unpriced)),
		slog.Int("failed", len(summary.Failed)),
	)

	if deps.Archiver != nil {
		path, err := deps.Archiver.Archive(ctx, summary, time.Now())
		if err != nil {
			a.logger.WarnContext(ctx, "snapshot archive failed",
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.InfoContext(ctx, "snapshot archived", slog.String("path", path))
		}
	}

	return portfolio.WriteCSV(os.Stdout, summary)
}

// WatchMode refreshes the portfolio on an interval, checks strategy levels,
// and notifies on triggered alerts.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Watch.Interval.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)
	a.startWatchLoop(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the HTTP API and the watch loop together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}
	a.startWatchLoop(ctx, g, deps)
	return g.Wait()
}

// startHTTPServer adds the HTTP server and its graceful-shutdown watcher to
// the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Portfolio: handler.NewPortfolioHandler(deps.Portfolio, a.logger),
		Strategy:  handler.NewStrategyHandler(deps.StrategyStore, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, deps.RateLimiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startWatchLoop adds the periodic refresh goroutine to the errgroup. Each
// cycle builds a snapshot, evaluates alerts, and optionally archives the CSV.
func (a *App) startWatchLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	alerts := service.NewAlertService(
		deps.StrategyStore,
		deps.Notifier,
		a.cfg.Watch.AlertCooldown.Duration,
		a.logger,
	)

	runCycle := func() {
		summary, err := deps.Portfolio.Snapshot(ctx)
		if err != nil {
			a.logger.ErrorContext(ctx, "watch: snapshot failed",
				slog.String("error", err.Error()),
			)
			return
		}

		triggered, err := alerts.Check(ctx, summary.Rows)
		if err != nil {
			a.logger.WarnContext(ctx, "watch: alert check failed",
				slog.String("error", err.Error()),
			)
		}

		a.logger.InfoContext(ctx, "watch: cycle complete",
			slog.Int("rows", len(summary.Rows)),
			slog.String("total_market_value", summary.TotalMarketValue.StringFixed(2)),
			slog.Int("alerts", len(triggered)),
		)

		if a.cfg.Watch.ArchiveSnapshots && deps.Archiver != nil {
			path, err := deps.Archiver.Archive(ctx, summary, time.Now())
			if err != nil {
				a.logger.WarnContext(ctx, "watch: snapshot archive failed",
					slog.String("error", err.Error()),
				)
				return
			}
			a.logger.DebugContext(ctx, "watch: snapshot archived", slog.String("path", path))

			if pruned, err := deps.Archiver.Prune(ctx, a.cfg.Watch.SnapshotKeep); err != nil {
				a.logger.WarnContext(ctx, "watch: snapshot prune failed",
					slog.String("error", err.Error()),
				)
			} else if pruned > 0 {
				a.logger.DebugContext(ctx, "watch: old snapshots pruned", slog.Int("count", pruned))
			}
		}
	}

	g.Go(func() error {
		runCycle()

		ticker := time.NewTicker(a.cfg.Watch.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runCycle()
			}
		}
	})
}
