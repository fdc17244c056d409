// Package notify fans operator alerts out to one or more delivery channels.
// Events are filtered by type before dispatch so operators can subscribe to
// executions only, hedges only, and so on.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oddskit/surebet/internal/domain"
)

// Sender delivers a single alert over one channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches alerts to all configured senders. Delivery failures
// are logged, never propagated; a down webhook must not stall execution.
type Notifier struct {
	senders []Sender
	allowed map[string]bool
	logger  *slog.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier builds a Notifier over the given senders. events lists the
// event types to forward; an empty list forwards everything.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		e = strings.TrimSpace(e)
		if e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers one alert to every sender, skipping event types outside
// the configured filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) {
	if len(n.allowed) > 0 && !n.allowed[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return
	}
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "alert delivery failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			continue
		}
		n.logger.DebugContext(ctx, "alert delivered",
			slog.String("sender", s.Name()),
			slog.String("event", event),
		)
	}
}

// FormatExecution renders an execution outcome as an alert title and body.
func FormatExecution(res *domain.ExecutionResult) (title, message string) {
	title = fmt.Sprintf("Execution %s", res.FinalStatus)

	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\nmarket: %s line %.2f\n", res.EventID, res.MarketType, res.Line)
	fmt.Fprintf(&b, "leg1 %s %s @ %.3f stake %.2f -> %s\n",
		res.FirstBet.Provider, res.FirstBet.Selection, res.FirstBet.Odds, res.FirstBet.Stake, res.FirstBet.Status)
	if res.SecondBet != nil {
		fmt.Fprintf(&b, "leg2 %s %s @ %.3f stake %.2f -> %s\n",
			res.SecondBet.Provider, res.SecondBet.Selection, res.SecondBet.Odds, res.SecondBet.Stake, res.SecondBet.Status)
	}
	fmt.Fprintf(&b, "audit: %s", res.ID)
	return title, b.String()
}

// FormatOpportunity renders a detected opportunity as an alert title and
// body.
func FormatOpportunity(opp domain.Opportunity) (title, message string) {
	title = fmt.Sprintf("Opportunity %.2f%%", opp.ExpectedProfitPercent)

	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\nmarket: %s line %.2f\n", opp.EventID, opp.MarketType, opp.Line)
	fmt.Fprintf(&b, "%s %s @ %.3f stake %.2f\n",
		opp.SideA.Provider, opp.SideA.Selection, opp.SideA.Odds, opp.SideA.Stake)
	fmt.Fprintf(&b, "%s %s @ %.3f stake %.2f",
		opp.SideB.Provider, opp.SideB.Selection, opp.SideB.Odds, opp.SideB.Stake)
	return title, b.String()
}

// FormatHedge renders a recorded hedge as an alert title and body.
func FormatHedge(successfulLeg domain.LegResult, auditID string) (title, message string) {
	title = "Hedge recorded"
	message = fmt.Sprintf("audit: %s\nunmatched leg: %s %s @ %.3f stake %.2f",
		auditID, successfulLeg.Provider, successfulLeg.Selection,
		successfulLeg.Odds, successfulLeg.Stake)
	return title, message
}
