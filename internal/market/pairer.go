package market

import "github.com/oddskit/surebet/internal/domain"

// Pair reshapes one indexed group into a harmonized market: both providers
// present, exactly two selections each, and each provider's two selections a
// recognized opposite pair. Any failed precondition yields ok=false; a group
// that does not pair simply never reaches the detector.
//
// Grouping is by literal line equality. A handicap line quoted from the
// opposite team's perspective lands in a different group and does not pair;
// erring on the side of no pair avoids betting the same outcome twice.
func Pair(group []domain.NormalizedMarket, providerA, providerB string) (domain.HarmonizedMarket, bool) {
	if len(group) == 0 {
		return domain.HarmonizedMarket{}, false
	}

	quotesA := providerQuotes(group, providerA)
	quotesB := providerQuotes(group, providerB)
	if !complementary(quotesA) || !complementary(quotesB) {
		return domain.HarmonizedMarket{}, false
	}

	k := group[0].Key()
	return domain.HarmonizedMarket{
		EventID:    k.EventID,
		MarketType: k.MarketType,
		Line:       k.Line,
		ProviderA:  quotesA,
		ProviderB:  quotesB,
	}, true
}

// Harmonize pairs every indexed group, dropping the ones that do not pair.
func Harmonize(idx map[domain.MarketKey][]domain.NormalizedMarket, providerA, providerB string) []domain.HarmonizedMarket {
	out := make([]domain.HarmonizedMarket, 0, len(idx))
	for _, group := range idx {
		if h, ok := Pair(group, providerA, providerB); ok {
			out = append(out, h)
		}
	}
	return out
}

// providerQuotes builds the selection->odds map for one provider's entries.
// A later duplicate of the same selection overwrites the earlier one.
func providerQuotes(group []domain.NormalizedMarket, provider string) map[domain.Selection]float64 {
	var n int
	quotes := make(map[domain.Selection]float64, 2)
	for _, m := range group {
		if m.Provider != provider {
			continue
		}
		n++
		quotes[m.Selection] = m.Odds
	}
	if n < 2 {
		return nil
	}
	return quotes
}

// complementary reports whether the map holds exactly two selections that
// form a recognized opposite pair.
func complementary(quotes map[domain.Selection]float64) bool {
	if len(quotes) != 2 {
		return false
	}
	for sel := range quotes {
		opp := sel.Opposite()
		if opp == "" {
			return false
		}
		if _, ok := quotes[opp]; !ok {
			return false
		}
	}
	return true
}
