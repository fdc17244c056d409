package arb

import "github.com/oddskit/surebet/internal/domain"

// Plan orders the two legs of an opportunity. Side A is always placed first
// and side B second; the engine never dispatches the second leg unless the
// first was accepted.
func Plan(opp domain.Opportunity) domain.ExecutionPlan {
	return domain.ExecutionPlan{First: opp.SideA, Second: opp.SideB}
}
