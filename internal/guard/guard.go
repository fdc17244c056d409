// Package guard holds the safety gates in front of the execution engine:
// the shadow/live mode switch, the global cooldown, the per-match execution
// lock with its staleness watchdog, and the exposure tracker.
package guard

import (
	"context"
	"log/slog"

	"github.com/oddskit/surebet/internal/domain"
)

// Mode selects between observing and betting.
type Mode string

const (
	// ModeShadow blocks every execution unconditionally; the pipeline runs
	// as a pure observability tool.
	ModeShadow Mode = "shadow"
	// ModeLive allows executions that pass the remaining checks.
	ModeLive Mode = "live"
)

// LegAuthorizer pre-authorizes a single leg: the provider is known and its
// account is enabled for betting.
type LegAuthorizer interface {
	AuthorizeLeg(ctx context.Context, leg domain.Leg) error
}

// LegAuthorizerFunc adapts a function to the LegAuthorizer interface.
type LegAuthorizerFunc func(ctx context.Context, leg domain.Leg) error

// AuthorizeLeg calls f.
func (f LegAuthorizerFunc) AuthorizeLeg(ctx context.Context, leg domain.Leg) error {
	return f(ctx, leg)
}

// Guard decides whether an opportunity may be executed. Every decision,
// allowed or blocked, emits one structured log line.
type Guard struct {
	mode      Mode
	readiness domain.ReadinessProbe
	auth      LegAuthorizer
	logger    *slog.Logger
}

// NewGuard creates a guard in the given mode. readiness and auth may be nil,
// in which case the corresponding live-path check is skipped.
func NewGuard(mode Mode, readiness domain.ReadinessProbe, auth LegAuthorizer, logger *slog.Logger) *Guard {
	return &Guard{
		mode:      mode,
		readiness: readiness,
		auth:      auth,
		logger:    logger.With(slog.String("component", "execution_guard")),
	}
}

// Mode returns the configured operating mode.
func (g *Guard) Mode() Mode {
	return g.mode
}

// Validate runs the gate checks in order. The shadow-mode check comes first
// and short-circuits everything else; the live path then consults the
// readiness probe and pre-authorizes both legs.
func (g *Guard) Validate(ctx context.Context, opp domain.Opportunity) bool {
	log := g.logger.With(
		slog.String("opp_id", opp.ID),
		slog.String("event_id", opp.EventID),
		slog.String("market", string(opp.MarketType)),
		slog.Float64("line", opp.Line),
		slog.Float64("profit_pct", opp.ExpectedProfitPercent),
	)

	if g.mode == ModeShadow {
		log.InfoContext(ctx, "execution blocked",
			slog.String("reason", "shadow_mode"),
			slog.String("first_leg", legSummary(opp.SideA)),
			slog.String("second_leg", legSummary(opp.SideB)),
		)
		return false
	}

	if g.readiness != nil && !g.readiness.Ready(ctx) {
		log.WarnContext(ctx, "execution blocked", slog.String("reason", "system_not_ready"))
		return false
	}

	if g.auth != nil {
		for _, leg := range []domain.Leg{opp.SideA, opp.SideB} {
			if err := g.auth.AuthorizeLeg(ctx, leg); err != nil {
				log.WarnContext(ctx, "execution blocked",
					slog.String("reason", "leg_not_authorized"),
					slog.String("provider", leg.Provider),
					slog.String("error", err.Error()),
				)
				return false
			}
		}
	}

	log.InfoContext(ctx, "execution allowed")
	return true
}

func legSummary(leg domain.Leg) string {
	return leg.Provider + " " + string(leg.Selection)
}
