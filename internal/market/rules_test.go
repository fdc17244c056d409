package market

import (
	"testing"

	"github.com/oddskit/surebet/internal/domain"
)

func TestDetectMarketType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.MarketType
		ok    bool
	}{
		{"full-time handicap", "FT HDP Home -0.5", domain.MarketFTHandicap, true},
		{"asian handicap token", "AH 0/0.5 Away", domain.MarketFTHandicap, true},
		{"full-time total", "Total Goals Over 2.5", domain.MarketFTTotal, true},
		{"over under slash", "O/U 2.5", domain.MarketFTTotal, true},
		{"half-time beats full-time handicap", "1st Half Handicap Home -0.25", domain.MarketHTHandicap, true},
		{"half-time total", "HT Over/Under 1.0", domain.MarketHTTotal, true},
		{"halftime one word", "halftime handicap away", domain.MarketHTHandicap, true},
		{"handicap beats totals when both", "HDP total line -0.5", domain.MarketFTHandicap, true},
		{"ht token not inside word", "fight winner", "", false},
		{"ou token not inside word", "double chance", "", false},
		{"unrecognized", "Correct Score 2-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detectMarketType(tt.input)
			if ok != tt.ok {
				t.Fatalf("detectMarketType(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("detectMarketType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectSelection(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Selection
		ok    bool
	}{
		{"Over 2.5", domain.SelectionOver, true},
		{"ov 1.5", domain.SelectionOver, true},
		{"Under 3", domain.SelectionUnder, true},
		{"un 0.5", domain.SelectionUnder, true},
		{"HDP Home -0.5", domain.SelectionHome, true},
		{"away +0.25", domain.SelectionAway, true},
		{"overtime rules", "", false}, // "over" must stand alone
		{"draw", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := detectSelection(tt.input)
			if ok != tt.ok {
				t.Fatalf("detectSelection(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("detectSelection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSelectionAllowed(t *testing.T) {
	if selectionAllowed(domain.MarketFTTotal, domain.SelectionHome) {
		t.Fatal("HOME must not be allowed on a totals market")
	}
	if selectionAllowed(domain.MarketFTHandicap, domain.SelectionOver) {
		t.Fatal("OVER must not be allowed on a handicap market")
	}
	if !selectionAllowed(domain.MarketHTTotal, domain.SelectionUnder) {
		t.Fatal("UNDER must be allowed on a half-time totals market")
	}
	if !selectionAllowed(domain.MarketHTHandicap, domain.SelectionAway) {
		t.Fatal("AWAY must be allowed on a half-time handicap market")
	}
}
