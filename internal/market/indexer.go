package market

import "github.com/oddskit/surebet/internal/domain"

// Index groups validated markets by (event, market type, line). Lines are
// compared by their literal normalized value; no validation happens here.
func Index(ms []domain.NormalizedMarket) map[domain.MarketKey][]domain.NormalizedMarket {
	idx := make(map[domain.MarketKey][]domain.NormalizedMarket)
	for _, m := range ms {
		k := m.Key()
		idx[k] = append(idx[k], m)
	}
	return idx
}
