package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MarketType identifies the betting market a quote belongs to.
type MarketType string

const (
	MarketFTHandicap MarketType = "FT_HDP" // full-time Asian handicap
	MarketFTTotal    MarketType = "FT_OU"  // full-time over/under
	MarketHTHandicap MarketType = "HT_HDP" // half-time Asian handicap
	MarketHTTotal    MarketType = "HT_OU"  // half-time over/under
)

// IsTotal reports whether the market is an over/under market.
func (t MarketType) IsTotal() bool {
	return t == MarketFTTotal || t == MarketHTTotal
}

// IsHandicap reports whether the market is an Asian handicap market.
func (t MarketType) IsHandicap() bool {
	return t == MarketFTHandicap || t == MarketHTHandicap
}

// Selection is the side of a market a quote applies to.
type Selection string

const (
	SelectionHome  Selection = "HOME"
	SelectionAway  Selection = "AWAY"
	SelectionOver  Selection = "OVER"
	SelectionUnder Selection = "UNDER"
)

// Opposite returns the complementary selection, or "" when the selection is
// not recognized.
func (s Selection) Opposite() Selection {
	switch s {
	case SelectionHome:
		return SelectionAway
	case SelectionAway:
		return SelectionHome
	case SelectionOver:
		return SelectionUnder
	case SelectionUnder:
		return SelectionOver
	}
	return ""
}

// RawMarket is one item of a raw odds batch as delivered by the ingestion
// layer: either a free-text market description or a provider-specific object
// with inconsistent field names. Exactly one of Text/Fields is populated.
type RawMarket struct {
	Text   string
	Fields map[string]any
}

// UnmarshalJSON accepts both the string and the object wire forms.
func (r *RawMarket) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Text)
	}
	return json.Unmarshal(data, &r.Fields)
}

// NormalizedMarket is the canonical representation of one provider quote.
// Line is stored as its absolute value for over/under markets.
type NormalizedMarket struct {
	EventID    string
	MarketType MarketType
	Line       float64
	Selection  Selection
	Odds       float64
	Provider   string
}

// MarketKey groups normalized markets that quote the same thing: one event,
// one market type, one literal line value.
type MarketKey struct {
	EventID    string
	MarketType MarketType
	Line       float64
}

// Key returns the market's grouping key.
func (m NormalizedMarket) Key() MarketKey {
	return MarketKey{EventID: m.EventID, MarketType: m.MarketType, Line: m.Line}
}

// String renders the key for log lines, e.g. "ev123|FT_HDP|-0.25".
func (k MarketKey) String() string {
	return k.EventID + "|" + string(k.MarketType) + "|" + strconv.FormatFloat(k.Line, 'g', -1, 64)
}

// HarmonizedMarket holds both providers' complementary quotes for one market
// key, reshaped so the two sides are directly comparable. Each odds map has
// exactly two entries forming a recognized opposite pair.
type HarmonizedMarket struct {
	EventID    string
	MarketType MarketType
	Line       float64
	ProviderA  map[Selection]float64
	ProviderB  map[Selection]float64
}

// Sides returns the selection pair quoted by this market in a fixed order
// (HOME/AWAY or OVER/UNDER).
func (h HarmonizedMarket) Sides() (Selection, Selection) {
	if h.MarketType.IsTotal() {
		return SelectionOver, SelectionUnder
	}
	return SelectionHome, SelectionAway
}

var _ fmt.Stringer = MarketKey{}
