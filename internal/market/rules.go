package market

import (
	"strings"

	"github.com/oddskit/surebet/internal/domain"
)

// Keyword groups used by the market-type rule table. Matching is done on a
// lowercased copy of the raw description.
var (
	halfTimeKeywords = []string{"ht", "half time", "half-time", "halftime", "1st half", "first half", "1h"}
	handicapKeywords = []string{"hdp", "handicap", "hcap", "ah"}
	totalKeywords    = []string{"ou", "o/u", "over/under", "total", "totals", "goals line", "over", "under"}
)

// typeRule is one entry of the ordered market-type table: every keyword
// group must have at least one match for the rule to fire.
type typeRule struct {
	Type   domain.MarketType
	Groups [][]string
}

// marketTypeRules is evaluated top to bottom. Half-time variants come before
// full-time ones, and handicap before totals, so a description carrying both
// half-time and handicap/total keywords resolves to the half-time market.
var marketTypeRules = []typeRule{
	{domain.MarketHTHandicap, [][]string{halfTimeKeywords, handicapKeywords}},
	{domain.MarketHTTotal, [][]string{halfTimeKeywords, totalKeywords}},
	{domain.MarketFTHandicap, [][]string{handicapKeywords}},
	{domain.MarketFTTotal, [][]string{totalKeywords}},
}

// detectMarketType classifies a raw description using the rule table.
func detectMarketType(text string) (domain.MarketType, bool) {
	lower := strings.ToLower(text)
	for _, rule := range marketTypeRules {
		if matchesAllGroups(lower, rule.Groups) {
			return rule.Type, true
		}
	}
	return "", false
}

func matchesAllGroups(lower string, groups [][]string) bool {
	for _, group := range groups {
		if !matchesAnyKeyword(lower, group) {
			return false
		}
	}
	return true
}

// matchesAnyKeyword reports whether any keyword of the group occurs in the
// text as a standalone token. Substring matching would confuse "ou" with
// "double" or "ht" with "fight".
func matchesAnyKeyword(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if containsToken(lower, kw) {
			return true
		}
	}
	return false
}

// containsToken reports whether needle occurs in haystack delimited by
// non-alphanumeric runes (or the string boundaries).
func containsToken(haystack, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		leftOK := idx == 0 || !isWordRune(rune(haystack[idx-1]))
		rightOK := end == len(haystack) || !isWordRune(rune(haystack[end]))
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
		if start >= len(haystack) {
			return false
		}
	}
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// selection keyword tokens, checked in order. Selection detection is
// independent of line extraction.
var selectionRules = []struct {
	Selection domain.Selection
	Keywords  []string
}{
	{domain.SelectionOver, []string{"over", "ov"}},
	{domain.SelectionUnder, []string{"under", "un"}},
	{domain.SelectionHome, []string{"home"}},
	{domain.SelectionAway, []string{"away"}},
}

// detectSelection finds the first selection keyword present in the text.
func detectSelection(text string) (domain.Selection, bool) {
	lower := strings.ToLower(text)
	for _, rule := range selectionRules {
		if matchesAnyKeyword(lower, rule.Keywords) {
			return rule.Selection, true
		}
	}
	return "", false
}

// selectionAllowed reports whether a selection makes sense for the market
// type: HOME/AWAY for handicap markets, OVER/UNDER for totals.
func selectionAllowed(t domain.MarketType, s domain.Selection) bool {
	if t.IsTotal() {
		return s == domain.SelectionOver || s == domain.SelectionUnder
	}
	return s == domain.SelectionHome || s == domain.SelectionAway
}
