package market

import (
	"math"

	"github.com/oddskit/surebet/internal/domain"
)

// Valid reports whether a normalized market satisfies the basic shape
// invariants: a resolved event id and market type, odds strictly above 1,
// and a finite numeric line. It is used as a filter predicate right after
// normalization; invalid records are silently excluded downstream.
func Valid(m domain.NormalizedMarket) bool {
	if m.EventID == "" {
		return false
	}
	switch m.MarketType {
	case domain.MarketFTHandicap, domain.MarketFTTotal, domain.MarketHTHandicap, domain.MarketHTTotal:
	default:
		return false
	}
	if m.Odds <= 1 {
		return false
	}
	if math.IsNaN(m.Line) || math.IsInf(m.Line, 0) {
		return false
	}
	return true
}

// Filter returns only the valid markets of the slice.
func Filter(ms []domain.NormalizedMarket) []domain.NormalizedMarket {
	out := make([]domain.NormalizedMarket, 0, len(ms))
	for _, m := range ms {
		if Valid(m) {
			out = append(out, m)
		}
	}
	return out
}
