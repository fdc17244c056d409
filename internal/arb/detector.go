// Package arb evaluates harmonized markets for guaranteed-profit two-leg
// combinations and computes the proportional stake split.
package arb

import (
	"time"

	"github.com/google/uuid"

	"github.com/oddskit/surebet/internal/domain"
)

// DefaultTotalStake is the nominal stake split across the two legs when no
// total is configured.
const DefaultTotalStake = 100.0

// Detector finds opposite-side combinations whose combined implied
// probability is below 1.
type Detector struct {
	totalStake float64
	providerA  string
	providerB  string
}

// NewDetector creates a detector that allocates totalStake units across the
// two legs of each opportunity. providerA and providerB name the two feed
// sources; ties on equal best odds credit providerA.
func NewDetector(totalStake float64, providerA, providerB string) *Detector {
	if totalStake <= 0 {
		totalStake = DefaultTotalStake
	}
	return &Detector{totalStake: totalStake, providerA: providerA, providerB: providerB}
}

// Detect evaluates one harmonized market. It returns ok=false when the
// combined implied probability is 1 or above, when either best odds is not
// positive, or when a computed stake is non-positive.
func (d *Detector) Detect(h domain.HarmonizedMarket) (domain.Opportunity, bool) {
	side1, side2 := h.Sides()

	odds1, prov1 := d.bestOdds(h, side1)
	odds2, prov2 := d.bestOdds(h, side2)
	if odds1 <= 0 || odds2 <= 0 {
		return domain.Opportunity{}, false
	}

	p := 1/odds1 + 1/odds2
	if p >= 1 {
		return domain.Opportunity{}, false
	}

	// Allocate the nominal total proportionally to each side's implied
	// probability so both outcomes pay out the same amount.
	stake1 := d.totalStake * (1 / odds1) / p
	stake2 := d.totalStake * (1 / odds2) / p
	if stake1 <= 0 || stake2 <= 0 {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		ID:         uuid.New().String(),
		EventID:    h.EventID,
		MarketType: h.MarketType,
		Line:       h.Line,
		SideA: domain.Leg{
			Provider:  prov1,
			Selection: side1,
			Odds:      odds1,
			Stake:     stake1,
		},
		SideB: domain.Leg{
			Provider:  prov2,
			Selection: side2,
			Odds:      odds2,
			Stake:     stake2,
		},
		TotalImpliedProbability: p,
		ExpectedProfitPercent:   (1 - p) * 100,
		DetectedAt:              time.Now().UTC(),
	}, true
}

// bestOdds picks the numerically higher quote for the side across the two
// providers. When only one provider quotes the side, that quote wins; equal
// quotes credit provider A (first evaluated).
func (d *Detector) bestOdds(h domain.HarmonizedMarket, side domain.Selection) (float64, string) {
	oddsA, okA := h.ProviderA[side]
	oddsB, okB := h.ProviderB[side]
	switch {
	case okA && okB:
		if oddsB > oddsA {
			return oddsB, d.providerB
		}
		return oddsA, d.providerA
	case okA:
		return oddsA, d.providerA
	case okB:
		return oddsB, d.providerB
	}
	return 0, ""
}
