package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// archiveInterval is how often the retention sweep runs.
const archiveInterval = 24 * time.Hour

// runPipeline starts every long-running goroutine for the odds pipeline and
// blocks until the first one fails or the context is cancelled.
func (a *App) runPipeline(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	// Lock staleness watchdog.
	g.Go(func() error {
		deps.Lock.Watchdog(ctx,
			a.cfg.Execution.WatchdogInterval.Duration,
			a.cfg.Execution.LockStaleness.Duration,
		)
		return nil
	})

	// Websocket reader, when that feed is configured. The redis source pumps
	// inside its subscription goroutine and needs no loop here.
	if deps.WS != nil {
		g.Go(func() error {
			return deps.WS.Run(ctx)
		})
	}

	// Retention sweep to object storage.
	if deps.Archiver != nil {
		g.Go(func() error {
			a.archiveLoop(ctx, deps)
			return nil
		})
	}

	// The pipeline itself.
	g.Go(func() error {
		return deps.Processor.Run(ctx, a.cfg.Detection.Workers)
	})

	err := g.Wait()
	st := deps.Processor.Stats()
	a.logger.Info("pipeline stopped",
		"batches", st.Batches,
		"markets", st.Markets,
		"rejected", st.Rejected,
		"opportunities", st.Opportunities,
		"executions", st.Executions,
	)
	return err
}

// archiveLoop periodically uploads audit rows older than the retention
// window. Failures are logged and retried on the next tick.
func (a *App) archiveLoop(ctx context.Context, deps *Dependencies) {
	ticker := time.NewTicker(archiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -a.cfg.S3.RetentionDays)
			n, err := deps.Archiver.ArchiveBefore(ctx, cutoff)
			if err != nil {
				a.logger.Error("audit archive sweep failed", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("audit rows archived", "count", n, "cutoff", cutoff)
			}
		}
	}
}
