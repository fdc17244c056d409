package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oddskit/surebet/internal/domain"
)

// HedgeService records a best-effort compensating action when one leg of an
// execution succeeds and the other does not. Persisting the hedge event is
// the handling in this version; no compensating trade is attempted. Every
// failure in here is swallowed and logged so a hedge can never crash the
// engine.
type HedgeService struct {
	store  domain.HedgeStore
	logger *slog.Logger
}

// NewHedgeService creates a hedge service backed by the given store.
func NewHedgeService(store domain.HedgeStore, logger *slog.Logger) *HedgeService {
	return &HedgeService{
		store:  store,
		logger: logger.With(slog.String("component", "hedge_service")),
	}
}

// ExecuteHedge persists a hedge event referencing the audit row and the
// successful leg. It returns true once the event is logged; a store failure
// returns false and leaves the execution PARTIAL.
func (h *HedgeService) ExecuteHedge(ctx context.Context, successfulLeg domain.LegResult, auditID string) bool {
	ev := domain.HedgeEvent{
		ID:        uuid.New().String(),
		AuditID:   auditID,
		Provider:  successfulLeg.Provider,
		Selection: successfulLeg.Selection,
		Odds:      successfulLeg.Odds,
		Stake:     successfulLeg.Stake,
		Details: fmt.Sprintf("unmatched leg: %s %s @%.3f stake %.2f (bet %s)",
			successfulLeg.Provider, successfulLeg.Selection,
			successfulLeg.Odds, successfulLeg.Stake, successfulLeg.BetID),
		Timestamp: time.Now().UTC(),
	}

	if err := h.store.Create(ctx, ev); err != nil {
		h.logger.Error("hedge event write failed",
			slog.String("audit_id", auditID),
			slog.String("error", err.Error()),
		)
		return false
	}

	h.logger.Warn("hedge recorded for partial execution",
		slog.String("audit_id", auditID),
		slog.String("hedge_id", ev.ID),
		slog.String("provider", ev.Provider),
		slog.Float64("stake", ev.Stake),
	)
	return true
}
