package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/oddskit/surebet/internal/arb"
	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/engine"
	"github.com/oddskit/surebet/internal/guard"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedSource replays a fixed batch sequence and then closes.
type scriptedSource struct {
	batches []domain.RawBatch
}

func (s *scriptedSource) Receive(ctx context.Context) (domain.RawBatch, error) {
	if len(s.batches) == 0 {
		return domain.RawBatch{}, domain.ErrFeedClosed
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func (s *scriptedSource) Close() error { return nil }

func shadowEngine() *engine.Engine {
	logger := testLogger()
	return engine.NewEngine(
		guard.NewGuard(guard.ModeShadow, nil, nil, logger),
		guard.NewCooldown(0),
		guard.NewExecutionLock(logger),
		guard.NewExposureTracker(guard.ExposureConfig{}, logger),
		nil,
		nil,
		nil,
		nil,
		logger,
	)
}

func TestProcessorPairsAcrossBatches(t *testing.T) {
	source := &scriptedSource{batches: []domain.RawBatch{
		{
			EventID:  "ev1",
			Provider: "alpha",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 2.10"},
				{Text: "FT HDP Away -0.5 @ 2.18"},
				{Text: "noise without a market"},
			},
		},
		{
			EventID:  "ev1",
			Provider: "beta",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 2.02"},
				{Text: "FT HDP Away -0.5 @ 2.30"},
			},
		},
	}}

	p := NewProcessor(
		source,
		arb.NewDetector(100, "alpha", "beta"),
		shadowEngine(),
		nil,
		"alpha", "beta",
		8,
		testLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := p.Stats()
	if st.Batches != 2 {
		t.Fatalf("batches = %d, want 2", st.Batches)
	}
	if st.Markets != 4 {
		t.Fatalf("markets = %d, want 4", st.Markets)
	}
	if st.Rejected != 1 {
		t.Fatalf("rejected = %d, want 1", st.Rejected)
	}
	// The first batch alone cannot pair; the second pairs against the
	// retained alpha snapshot.
	if st.Opportunities != 1 {
		t.Fatalf("opportunities = %d, want 1", st.Opportunities)
	}
	// Shadow mode blocks every execution.
	if st.Executions != 0 {
		t.Fatalf("executions = %d, want 0 in shadow mode", st.Executions)
	}
}

func TestProcessorSnapshotReplacedPerProvider(t *testing.T) {
	// The second alpha batch moves the odds so the pair no longer clears
	// 1.0 combined; the stale alpha quotes must not linger.
	source := &scriptedSource{batches: []domain.RawBatch{
		{
			EventID:  "ev1",
			Provider: "alpha",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 2.10"},
				{Text: "FT HDP Away -0.5 @ 2.18"},
			},
		},
		{
			EventID:  "ev1",
			Provider: "alpha",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 1.80"},
				{Text: "FT HDP Away -0.5 @ 1.85"},
			},
		},
		{
			EventID:  "ev1",
			Provider: "beta",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 1.82"},
				{Text: "FT HDP Away -0.5 @ 1.88"},
			},
		},
	}}

	p := NewProcessor(
		source,
		arb.NewDetector(100, "alpha", "beta"),
		shadowEngine(),
		nil,
		"alpha", "beta",
		8,
		testLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := p.Stats()
	if st.Pairs != 1 {
		t.Fatalf("pairs = %d, want 1 (only after the beta batch)", st.Pairs)
	}
	if st.Opportunities != 0 {
		t.Fatalf("opportunities = %d, want 0 at the refreshed odds", st.Opportunities)
	}
}

// recordingNotifier captures emitted alert events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func TestProcessorNotifiesOnOpportunity(t *testing.T) {
	source := &scriptedSource{batches: []domain.RawBatch{
		{
			EventID:  "ev1",
			Provider: "alpha",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 2.10"},
				{Text: "FT HDP Away -0.5 @ 2.18"},
			},
		},
		{
			EventID:  "ev1",
			Provider: "beta",
			Items: []domain.RawMarket{
				{Text: "FT HDP Home -0.5 @ 2.02"},
				{Text: "FT HDP Away -0.5 @ 2.30"},
			},
		},
	}}
	notifier := &recordingNotifier{}

	p := NewProcessor(
		source,
		arb.NewDetector(100, "alpha", "beta"),
		shadowEngine(),
		notifier,
		"alpha", "beta",
		8,
		testLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.events) != 1 || notifier.events[0] != "opportunity" {
		t.Fatalf("events = %v, want one opportunity alert", notifier.events)
	}
}

func TestProcessorDropEvent(t *testing.T) {
	p := NewProcessor(
		&scriptedSource{},
		arb.NewDetector(100, "alpha", "beta"),
		shadowEngine(),
		nil,
		"alpha", "beta",
		8,
		testLogger(),
	)

	merged := p.updateSnapshot("ev1", "alpha", []domain.NormalizedMarket{
		{EventID: "ev1", MarketType: domain.MarketFTHandicap, Line: -0.5,
			Selection: domain.SelectionHome, Odds: 2.0, Provider: "alpha"},
	}, nil)
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1", len(merged))
	}

	p.DropEvent("ev1")
	merged = p.updateSnapshot("ev1", "beta", nil, nil)
	if len(merged) != 0 {
		t.Fatalf("merged after drop = %d, want 0", len(merged))
	}
}
