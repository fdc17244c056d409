package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/oddskit/surebet/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type readinessFunc func(ctx context.Context) bool

func (f readinessFunc) Ready(ctx context.Context) bool { return f(ctx) }

func testOpportunity() domain.Opportunity {
	return domain.Opportunity{
		ID:      "opp1",
		EventID: "ev1",
		SideA:   domain.Leg{Provider: "alpha", Selection: domain.SelectionHome, Odds: 2.1, Stake: 52},
		SideB:   domain.Leg{Provider: "beta", Selection: domain.SelectionAway, Odds: 2.3, Stake: 48},
	}
}

func TestGuardShadowModeBlocksEverything(t *testing.T) {
	readinessCalled := false
	authCalled := false

	g := NewGuard(ModeShadow,
		readinessFunc(func(context.Context) bool {
			readinessCalled = true
			return true
		}),
		LegAuthorizerFunc(func(context.Context, domain.Leg) error {
			authCalled = true
			return nil
		}),
		testLogger(),
	)

	if g.Validate(context.Background(), testOpportunity()) {
		t.Fatal("shadow mode must block execution")
	}
	if readinessCalled || authCalled {
		t.Fatal("shadow mode must short-circuit the remaining checks")
	}
}

func TestGuardLiveMode(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		auth  error
		want  bool
	}{
		{"all checks pass", true, nil, true},
		{"system not ready", false, nil, false},
		{"leg not authorized", true, errors.New("no account"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(ModeLive,
				readinessFunc(func(context.Context) bool { return tt.ready }),
				LegAuthorizerFunc(func(context.Context, domain.Leg) error { return tt.auth }),
				testLogger(),
			)
			if got := g.Validate(context.Background(), testOpportunity()); got != tt.want {
				t.Fatalf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuardLiveModeNilChecks(t *testing.T) {
	g := NewGuard(ModeLive, nil, nil, testLogger())
	if !g.Validate(context.Background(), testOpportunity()) {
		t.Fatal("nil probe and authorizer must not block a live guard")
	}
}
