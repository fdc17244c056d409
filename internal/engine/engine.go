// Package engine orchestrates the guarded two-leg execution of an arbitrage
// opportunity: guard, cooldown, single-flight lock, exposure accounting, the
// two placement calls, audit persistence, and best-effort hedging.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oddskit/surebet/internal/arb"
	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/guard"
	"github.com/oddskit/surebet/internal/notify"
)

// Account links a provider's placement client to the betting account whose
// exposure it spends.
type Account struct {
	ID     string
	Placer domain.BetPlacer
}

// Engine executes opportunities one at a time per match. Provider errors
// during a leg call are folded into that leg's result; Execute returns a Go
// error only for context cancellation while waiting on the cooldown.
type Engine struct {
	guard    *guard.Guard
	cooldown *guard.Cooldown
	lock     *guard.ExecutionLock
	exposure *guard.ExposureTracker
	accounts map[string]Account // keyed by provider name
	store    domain.ExecutionStore
	hedge    *HedgeService
	notifier domain.Notifier
	logger   *slog.Logger
}

// NewEngine wires an engine. notifier may be nil.
func NewEngine(
	g *guard.Guard,
	cooldown *guard.Cooldown,
	lock *guard.ExecutionLock,
	exposure *guard.ExposureTracker,
	accounts map[string]Account,
	store domain.ExecutionStore,
	hedge *HedgeService,
	notifier domain.Notifier,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		guard:    g,
		cooldown: cooldown,
		lock:     lock,
		exposure: exposure,
		accounts: accounts,
		store:    store,
		hedge:    hedge,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "execution_engine")),
	}
}

// AuthorizeLeg implements guard.LegAuthorizer: a leg is authorized when the
// engine has a placement account for its provider.
func (e *Engine) AuthorizeLeg(_ context.Context, leg domain.Leg) error {
	if _, ok := e.accounts[leg.Provider]; !ok {
		return fmt.Errorf("engine: no account for provider %q", leg.Provider)
	}
	return nil
}

// Execute runs one opportunity through the full state machine. A nil result
// with nil error means the attempt was blocked before any bet call (guard
// denial, busy lock, or exposure ceiling) and left no audit row.
func (e *Engine) Execute(ctx context.Context, opp domain.Opportunity) (*domain.ExecutionResult, error) {
	log := e.logger.With(
		slog.String("opp_id", opp.ID),
		slog.String("event_id", opp.EventID),
		slog.String("market", string(opp.MarketType)),
	)

	// 1. Guard. A denial leaves no trace besides the guard's own decision
	// log: no lock, no audit row.
	if !e.guard.Validate(ctx, opp) {
		return nil, nil
	}

	// 2. Global cooldown; serializes executions process-wide.
	if err := e.cooldown.Wait(ctx); err != nil {
		return nil, fmt.Errorf("engine: cooldown wait: %w", err)
	}

	// 3. Single-flight lock per match.
	matchID := opp.EventID
	token, ok := e.lock.TryBegin(matchID)
	if !ok {
		log.Warn("execution already in flight for match, skipping")
		return nil, nil
	}
	defer func() {
		if e.lock.Owns(matchID, token) {
			e.lock.End(matchID)
		}
	}()

	// 4. Reserve exposure for both stakes in one atomic step; a concurrent
	// execution on another match cannot slip past a shared account's
	// ceiling between the check and the record. Legs that end up not
	// accepted release their share below.
	plan := arb.Plan(opp)
	firstAcct := e.accounts[plan.First.Provider]
	secondAcct := e.accounts[plan.Second.Provider]
	ok = e.exposure.Reserve(matchID, []guard.Stake{
		{AccountID: firstAcct.ID, Amount: plan.First.Stake},
		{AccountID: secondAcct.ID, Amount: plan.Second.Stake},
	})
	if !ok {
		log.Warn("execution blocked by exposure ceiling",
			slog.String("first_provider", plan.First.Provider),
			slog.String("second_provider", plan.Second.Provider),
		)
		return nil, nil
	}

	res := &domain.ExecutionResult{
		ID:         uuid.New().String(),
		EventID:    opp.EventID,
		MarketType: opp.MarketType,
		Line:       opp.Line,
		Timestamp:  time.Now().UTC(),
	}

	// 5. First leg. If it is not accepted the second leg is never
	// attempted: a lone second-leg bet is exactly the one-sided exposure
	// this engine exists to avoid.
	res.FirstBet = e.placeLeg(ctx, matchID, plan.First)
	if res.FirstBet.Status != domain.LegAccepted {
		e.exposure.Reduce(firstAcct.ID, matchID, plan.First.Stake)
		e.exposure.Reduce(secondAcct.ID, matchID, plan.Second.Stake)
		skipped := skippedLeg(plan.Second)
		res.SecondBet = &skipped
		res.FinalStatus = domain.ExecutionAborted
		e.finish(ctx, matchID, token, res, log)
		return res, nil
	}

	// 6. Second leg.
	second := e.placeLeg(ctx, matchID, plan.Second)
	res.SecondBet = &second
	if second.Status == domain.LegAccepted {
		res.FinalStatus = domain.ExecutionSuccess
	} else {
		e.exposure.Reduce(secondAcct.ID, matchID, plan.Second.Stake)
		res.FinalStatus = domain.ExecutionPartial
	}

	e.finish(ctx, matchID, token, res, log)
	return res, nil
}

// finish persists the audit row and, on a partial fill, triggers the hedge.
func (e *Engine) finish(ctx context.Context, matchID, token string, res *domain.ExecutionResult, log *slog.Logger) {
	// A leg that completed after the watchdog released the lock is still
	// real money movement; record it, but flag the stale commit.
	if !e.lock.Owns(matchID, token) {
		log.Warn("leg result committed after forced lock release",
			slog.String("audit_id", res.ID),
		)
	}

	if err := e.store.Create(ctx, *res); err != nil {
		log.Error("audit write failed",
			slog.String("audit_id", res.ID),
			slog.String("error", err.Error()),
		)
	}

	if res.FinalStatus == domain.ExecutionPartial && e.hedge != nil {
		if e.hedge.ExecuteHedge(ctx, res.FirstBet, res.ID) {
			res.FinalStatus = domain.ExecutionHedged
			if err := e.store.UpdateStatus(ctx, res.ID, domain.ExecutionHedged); err != nil {
				log.Error("audit status update failed",
					slog.String("audit_id", res.ID),
					slog.String("error", err.Error()),
				)
			}
			if e.notifier != nil {
				title, msg := notify.FormatHedge(res.FirstBet, res.ID)
				e.notifier.Notify(ctx, "hedge", title, msg)
			}
		}
	}

	log.Info("execution finished",
		slog.String("audit_id", res.ID),
		slog.String("final_status", string(res.FinalStatus)),
		slog.String("first_leg", string(res.FirstBet.Status)),
		slog.String("second_leg", string(res.SecondBet.Status)),
	)

	if e.notifier != nil {
		title, msg := notify.FormatExecution(res)
		e.notifier.Notify(ctx, "execution", title, msg)
	}
}

// placeLeg dispatches one bet and folds any transport error into the leg's
// own result; nothing propagates past the engine boundary.
func (e *Engine) placeLeg(ctx context.Context, matchID string, leg domain.Leg) (lr domain.LegResult) {
	lr = domain.LegResult{
		Provider:  leg.Provider,
		Selection: leg.Selection,
		Odds:      leg.Odds,
		Stake:     leg.Stake,
	}

	acct, ok := e.accounts[leg.Provider]
	if !ok || acct.Placer == nil {
		lr.Status = domain.LegFailed
		lr.ErrorMessage = "no placement client for provider " + leg.Provider
		return lr
	}

	// A panicking placement client must not take the process down with an
	// opportunity half-executed; it becomes a failed leg like any other
	// provider error.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("placement client panicked",
				slog.String("provider", leg.Provider),
				slog.String("match_id", matchID),
				slog.Any("panic", r),
			)
			lr.Status = domain.LegFailed
			lr.ErrorMessage = fmt.Sprintf("placement panic: %v", r)
		}
	}()

	bet, err := acct.Placer.Place(ctx, domain.BetRequest{
		MatchID:   matchID,
		Selection: leg.Selection,
		Odds:      leg.Odds,
		Stake:     leg.Stake,
	})
	if err != nil {
		lr.Status = domain.LegFailed
		lr.ErrorMessage = err.Error()
		return lr
	}

	lr.Status = bet.Status
	lr.BetID = bet.BetID
	lr.ErrorMessage = bet.ErrorMessage
	return lr
}

func skippedLeg(leg domain.Leg) domain.LegResult {
	return domain.LegResult{
		Provider:  leg.Provider,
		Selection: leg.Selection,
		Odds:      leg.Odds,
		Stake:     leg.Stake,
		Status:    domain.LegSkipped,
	}
}
