// Package pipeline drives raw odds batches through normalization,
// harmonization and detection, handing confirmed opportunities to the
// execution engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oddskit/surebet/internal/arb"
	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/engine"
	"github.com/oddskit/surebet/internal/market"
	"github.com/oddskit/surebet/internal/notify"
	"github.com/oddskit/surebet/internal/worker"
)

// Stats counts what the processor has seen since start.
type Stats struct {
	Batches       int64
	Markets       int64
	Rejected      int64
	Pairs         int64
	Opportunities int64
	Executions    int64
}

type normalizeJob struct {
	items    []domain.RawMarket
	provider string
	eventID  string
}

type normalizeResult struct {
	markets []domain.NormalizedMarket
	rejects market.RejectCounts
}

// Processor consumes one feed source and keeps, per event, the latest
// normalized snapshot from each provider. Harmonization always runs over the
// merged snapshots so a batch from one provider can pair against the other
// provider's most recent quotes.
type Processor struct {
	source    domain.FeedSource
	detector  *arb.Detector
	engine    *engine.Engine
	notifier  domain.Notifier
	pool      *worker.Pool[normalizeJob, normalizeResult]
	providerA string
	providerB string
	logger    *slog.Logger

	mu        sync.Mutex
	snapshots map[string]map[string][]domain.NormalizedMarket // eventID -> provider -> markets
	stats     Stats
}

// NewProcessor wires a processor over the given source and engine. notifier
// may be nil.
func NewProcessor(
	source domain.FeedSource,
	detector *arb.Detector,
	eng *engine.Engine,
	notifier domain.Notifier,
	providerA, providerB string,
	queueSize int,
	logger *slog.Logger,
) *Processor {
	p := &Processor{
		source:    source,
		detector:  detector,
		engine:    eng,
		notifier:  notifier,
		providerA: providerA,
		providerB: providerB,
		logger:    logger.With("component", "pipeline"),
		snapshots: make(map[string]map[string][]domain.NormalizedMarket),
	}
	p.pool = worker.NewPool(queueSize, func(job normalizeJob) normalizeResult {
		ms, rejects := market.Normalize(job.items, job.provider, job.eventID)
		return normalizeResult{markets: market.Filter(ms), rejects: rejects}
	})
	return p
}

// Run blocks consuming batches until ctx is cancelled or the source closes.
// Normalization workers run alongside the consume loop.
func (p *Processor) Run(ctx context.Context, workers int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poolDone := make(chan error, 1)
	go func() { poolDone <- p.pool.Run(ctx, workers) }()

	for {
		batch, err := p.source.Receive(ctx)
		if err != nil {
			cancel()
			<-poolDone
			if errors.Is(err, domain.ErrFeedClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("pipeline: receive: %w", err)
		}
		if err := p.processBatch(ctx, batch); err != nil {
			p.logger.Error("batch processing failed",
				"event_id", batch.EventID,
				"provider", batch.Provider,
				"error", err)
		}
	}
}

// processBatch normalizes one batch on the pool, refreshes the event
// snapshot and runs detection over the merged view.
func (p *Processor) processBatch(ctx context.Context, batch domain.RawBatch) error {
	res, err := p.pool.Do(ctx, normalizeJob{
		items:    batch.Items,
		provider: batch.Provider,
		eventID:  batch.EventID,
	})
	if err != nil {
		return fmt.Errorf("pipeline: normalize: %w", err)
	}
	if res.rejects.Total() > 0 {
		p.logger.Debug("markets rejected during normalization",
			"event_id", batch.EventID,
			"provider", batch.Provider,
			"rejected", res.rejects.Total())
	}

	merged := p.updateSnapshot(batch.EventID, batch.Provider, res.markets, res.rejects)

	idx := market.Index(merged)
	pairs := market.Harmonize(idx, p.providerA, p.providerB)

	p.mu.Lock()
	p.stats.Pairs += int64(len(pairs))
	p.mu.Unlock()

	for _, pair := range pairs {
		opp, ok := p.detector.Detect(pair)
		if !ok {
			continue
		}
		p.mu.Lock()
		p.stats.Opportunities++
		p.mu.Unlock()

		p.logger.Info("arbitrage opportunity detected",
			"opportunity_id", opp.ID,
			"event_id", opp.EventID,
			"market_type", opp.MarketType,
			"line", opp.Line,
			"profit_percent", opp.ExpectedProfitPercent)
		if p.notifier != nil {
			title, msg := notify.FormatOpportunity(opp)
			p.notifier.Notify(ctx, "opportunity", title, msg)
		}

		result, err := p.engine.Execute(ctx, opp)
		if err != nil {
			p.logger.Error("execution failed", "opportunity_id", opp.ID, "error", err)
			if p.notifier != nil {
				p.notifier.Notify(ctx, "error", "Execution error",
					fmt.Sprintf("opportunity %s on %s: %v", opp.ID, opp.EventID, err))
			}
			continue
		}
		if result != nil {
			p.mu.Lock()
			p.stats.Executions++
			p.mu.Unlock()
		}
	}
	return nil
}

// updateSnapshot replaces the provider's markets for the event and returns
// the merged view across both providers.
func (p *Processor) updateSnapshot(eventID, provider string, ms []domain.NormalizedMarket, rejects market.RejectCounts) []domain.NormalizedMarket {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Batches++
	p.stats.Markets += int64(len(ms))
	p.stats.Rejected += int64(rejects.Total())

	byProvider, ok := p.snapshots[eventID]
	if !ok {
		byProvider = make(map[string][]domain.NormalizedMarket)
		p.snapshots[eventID] = byProvider
	}
	byProvider[provider] = ms

	merged := make([]domain.NormalizedMarket, 0, len(byProvider[p.providerA])+len(byProvider[p.providerB]))
	merged = append(merged, byProvider[p.providerA]...)
	merged = append(merged, byProvider[p.providerB]...)
	return merged
}

// DropEvent forgets all snapshots for an event, typically once it has
// started or settled.
func (p *Processor) DropEvent(eventID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.snapshots, eventID)
}

// Stats returns a copy of the running counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
