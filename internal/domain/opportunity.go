package domain

import "time"

// Leg is one side of a two-leg arbitrage: which provider to bet with, the
// selection, the odds the stake was computed against, and the stake itself.
type Leg struct {
	Provider  string
	Selection Selection
	Odds      float64
	Stake     float64
}

// Opportunity is a detected guaranteed-profit combination of two opposite
// quotes. It is emitted only when TotalImpliedProbability < 1 and both
// stakes are positive, and is consumed at most once by the execution engine.
type Opportunity struct {
	ID                      string
	EventID                 string
	MarketType              MarketType
	Line                    float64
	SideA                   Leg
	SideB                   Leg
	TotalImpliedProbability float64
	ExpectedProfitPercent   float64
	DetectedAt              time.Time
}

// ExecutionPlan orders the two legs of an opportunity. First is always
// placed before Second; Second is skipped when First is not accepted.
type ExecutionPlan struct {
	First  Leg
	Second Leg
}
