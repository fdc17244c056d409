package arb

import (
	"math"
	"testing"

	"github.com/oddskit/surebet/internal/domain"
)

func harmonized(homeA, awayA, homeB, awayB float64) domain.HarmonizedMarket {
	return domain.HarmonizedMarket{
		EventID:    "ev1",
		MarketType: domain.MarketFTHandicap,
		Line:       -0.5,
		ProviderA: map[domain.Selection]float64{
			domain.SelectionHome: homeA,
			domain.SelectionAway: awayA,
		},
		ProviderB: map[domain.Selection]float64{
			domain.SelectionHome: homeB,
			domain.SelectionAway: awayB,
		},
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-6
}

func TestDetectFindsOpportunity(t *testing.T) {
	d := NewDetector(100, "alpha", "beta")

	// Best HOME is alpha's 2.10, best AWAY is beta's 2.30:
	// p = 1/2.10 + 1/2.30 ≈ 0.910973.
	opp, ok := d.Detect(harmonized(2.10, 2.18, 2.02, 2.30))
	if !ok {
		t.Fatal("expected an opportunity")
	}

	if opp.SideA.Provider != "alpha" || opp.SideA.Selection != domain.SelectionHome || opp.SideA.Odds != 2.10 {
		t.Fatalf("unexpected first side: %+v", opp.SideA)
	}
	if opp.SideB.Provider != "beta" || opp.SideB.Selection != domain.SelectionAway || opp.SideB.Odds != 2.30 {
		t.Fatalf("unexpected second side: %+v", opp.SideB)
	}

	wantP := 1/2.10 + 1/2.30
	if !approx(opp.TotalImpliedProbability, wantP) {
		t.Fatalf("implied probability = %v, want %v", opp.TotalImpliedProbability, wantP)
	}
	if !approx(opp.ExpectedProfitPercent, (1-wantP)*100) {
		t.Fatalf("profit percent = %v, want %v", opp.ExpectedProfitPercent, (1-wantP)*100)
	}

	// Stakes split the total proportionally to implied probability, so both
	// outcomes pay out the same amount.
	if !approx(opp.SideA.Stake+opp.SideB.Stake, 100) {
		t.Fatalf("stakes sum to %v, want 100", opp.SideA.Stake+opp.SideB.Stake)
	}
	payoutA := opp.SideA.Stake * opp.SideA.Odds
	payoutB := opp.SideB.Stake * opp.SideB.Odds
	if !approx(payoutA, payoutB) {
		t.Fatalf("payouts differ: %v vs %v", payoutA, payoutB)
	}
	if payoutA <= 100 {
		t.Fatalf("payout %v must exceed the total stake", payoutA)
	}
}

func TestDetectNoOpportunityAtOrAboveOne(t *testing.T) {
	d := NewDetector(100, "alpha", "beta")

	// p = 1/1.95 + 1/2.05 ≈ 1.000626: a near miss, still no opportunity.
	if _, ok := d.Detect(harmonized(1.95, 2.05, 1.95, 2.05)); ok {
		t.Fatal("combined probability above 1 must not be an opportunity")
	}

	// p exactly 1 (2.00/2.00) is excluded too.
	if _, ok := d.Detect(harmonized(2.00, 2.00, 2.00, 2.00)); ok {
		t.Fatal("combined probability of exactly 1 must not be an opportunity")
	}
}

func TestDetectTieCreditsProviderA(t *testing.T) {
	d := NewDetector(100, "alpha", "beta")

	opp, ok := d.Detect(harmonized(2.20, 2.30, 2.20, 2.30))
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if opp.SideA.Provider != "alpha" || opp.SideB.Provider != "alpha" {
		t.Fatalf("equal best odds must credit provider A, got %s/%s",
			opp.SideA.Provider, opp.SideB.Provider)
	}
}

func TestDetectBestOddsAcrossProviders(t *testing.T) {
	d := NewDetector(100, "alpha", "beta")

	h := domain.HarmonizedMarket{
		EventID:    "ev1",
		MarketType: domain.MarketFTTotal,
		Line:       2.5,
		ProviderA: map[domain.Selection]float64{
			domain.SelectionOver:  2.15,
			domain.SelectionUnder: 1.80,
		},
		ProviderB: map[domain.Selection]float64{
			domain.SelectionOver:  1.90,
			domain.SelectionUnder: 2.12,
		},
	}
	opp, ok := d.Detect(h)
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if opp.SideA.Provider != "alpha" || opp.SideB.Provider != "beta" {
		t.Fatalf("best odds must come from opposite providers, got %s/%s",
			opp.SideA.Provider, opp.SideB.Provider)
	}
	if opp.SideA.Odds != 2.15 || opp.SideB.Odds != 2.12 {
		t.Fatalf("unexpected best odds %v/%v", opp.SideA.Odds, opp.SideB.Odds)
	}
}

func TestDefaultTotalStake(t *testing.T) {
	d := NewDetector(0, "alpha", "beta")
	opp, ok := d.Detect(harmonized(2.20, 2.30, 2.20, 2.30))
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if !approx(opp.SideA.Stake+opp.SideB.Stake, DefaultTotalStake) {
		t.Fatalf("stakes sum to %v, want default %v",
			opp.SideA.Stake+opp.SideB.Stake, DefaultTotalStake)
	}
}
