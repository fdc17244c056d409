// Package market reduces raw provider odds payloads to the canonical
// NormalizedMarket form and regroups them into harmonized two-provider
// markets. All stages are pure functions; malformed input is dropped with a
// typed reject reason rather than raised as an error.
package market

import (
	"math"
	"strconv"
	"strings"

	"github.com/oddskit/surebet/internal/domain"
)

// RejectReason classifies why a raw item produced no market. Callers log
// aggregate counts only; individual rejects are silent.
type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectNoType      RejectReason = "no_market_type"
	RejectNoOdds      RejectReason = "no_odds"
	RejectNoSelection RejectReason = "no_selection"
	RejectNoLine      RejectReason = "no_line"
)

// RejectCounts aggregates per-reason drop counters for one Normalize call.
type RejectCounts map[RejectReason]int

// Total sums the drops across all reasons.
func (c RejectCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Field-name aliases seen across provider payloads.
var (
	oddsAliases      = []string{"odds", "o", "price", "rate", "coef"}
	lineAliases      = []string{"line", "handicap", "hcap", "point", "points", "total", "hdp"}
	selectionAliases = []string{"selection", "oddsName", "odds_name", "side", "outcome", "name"}
	typeAliases      = []string{"marketType", "market_type", "market", "type", "bt", "category"}
)

// Normalize converts one provider batch into canonical markets. Items that
// cannot be reduced (missing odds, selection, or line, or an unrecognized
// market type) are dropped and counted.
func Normalize(items []domain.RawMarket, provider, eventID string) ([]domain.NormalizedMarket, RejectCounts) {
	out := make([]domain.NormalizedMarket, 0, len(items))
	rejects := make(RejectCounts)
	for _, item := range items {
		m, reason := normalizeOne(item, provider, eventID)
		if reason != RejectNone {
			rejects[reason]++
			continue
		}
		out = append(out, m)
	}
	return out, rejects
}

func normalizeOne(item domain.RawMarket, provider, eventID string) (domain.NormalizedMarket, RejectReason) {
	if item.Text != "" {
		return normalizeText(item.Text, provider, eventID)
	}
	return normalizeFields(item.Fields, provider, eventID)
}

// normalizeText reduces a free-text description like "HDP -0.25 HOME @1.95".
func normalizeText(text, provider, eventID string) (domain.NormalizedMarket, RejectReason) {
	mt, ok := detectMarketType(text)
	if !ok {
		return domain.NormalizedMarket{}, RejectNoType
	}

	// Odds follow the last "@" marker; everything before it is the market
	// description the line and selection are read from.
	desc := text
	odds := 0.0
	if at := strings.LastIndex(text, "@"); at >= 0 {
		odds = parseOddsText(text[at+1:])
		desc = text[:at]
	}
	if odds == 0 {
		return domain.NormalizedMarket{}, RejectNoOdds
	}

	sel, ok := detectSelection(desc)
	if !ok || !selectionAllowed(mt, sel) {
		return domain.NormalizedMarket{}, RejectNoSelection
	}

	line, ok := extractLine(desc)
	if !ok {
		return domain.NormalizedMarket{}, RejectNoLine
	}

	return build(eventID, provider, mt, sel, line, odds), RejectNone
}

// normalizeFields reduces a structured payload with provider-specific field
// names.
func normalizeFields(fields map[string]any, provider, eventID string) (domain.NormalizedMarket, RejectReason) {
	if len(fields) == 0 {
		return domain.NormalizedMarket{}, RejectNoType
	}

	mt, ok := detectMarketType(typeText(fields))
	if !ok {
		return domain.NormalizedMarket{}, RejectNoType
	}

	odds, ok := numField(fields, oddsAliases)
	if !ok || odds == 0 {
		return domain.NormalizedMarket{}, RejectNoOdds
	}

	selText, ok := strField(fields, selectionAliases)
	if !ok {
		return domain.NormalizedMarket{}, RejectNoSelection
	}
	sel, ok := detectSelection(selText)
	if !ok || !selectionAllowed(mt, sel) {
		return domain.NormalizedMarket{}, RejectNoSelection
	}

	line, ok := lineField(fields)
	if !ok {
		// Some providers fold the line into the selection label
		// ("Over 2.5").
		line, ok = extractLine(selText)
	}
	if !ok {
		return domain.NormalizedMarket{}, RejectNoLine
	}

	return build(eventID, provider, mt, sel, line, odds), RejectNone
}

// build finalizes a normalized market, storing totals lines as absolute
// values.
func build(eventID, provider string, mt domain.MarketType, sel domain.Selection, line, odds float64) domain.NormalizedMarket {
	if mt.IsTotal() {
		line = math.Abs(line)
	}
	return domain.NormalizedMarket{
		EventID:    eventID,
		MarketType: mt,
		Line:       line,
		Selection:  sel,
		Odds:       odds,
		Provider:   provider,
	}
}

// typeText joins the field values a market-type keyword may live in.
func typeText(fields map[string]any) string {
	var parts []string
	for _, alias := range typeAliases {
		if v, ok := fields[alias]; ok {
			if s, ok := v.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// parseOddsText parses the substring following the "@" marker.
func parseOddsText(s string) float64 {
	s = normalizeLineText(s)
	tok := plainNumberRe.FindString(s)
	if tok == "" {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}

// numField returns the first populated numeric field among the aliases.
// String values are parsed after decimal-comma normalization.
func numField(fields map[string]any, aliases []string) (float64, bool) {
	for _, alias := range aliases {
		v, ok := fields[alias]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(normalizeLineText(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// lineField returns the first populated line field, accepting both numeric
// values and any of the string line notations.
func lineField(fields map[string]any) (float64, bool) {
	for _, alias := range lineAliases {
		v, ok := fields[alias]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, ok := ParseLine(n); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func strField(fields map[string]any, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := fields[alias]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
