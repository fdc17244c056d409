package market

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Line notation parsing. Providers quote Asian lines in four shapes:
//
//	plain decimal   "-0.5", "2.5"
//	quarter slash   "0/0.5"   -> midpoint 0.25
//	quarter dash    "0.5-1"   -> midpoint 0.75 (only when the absolute
//	                             halves differ by exactly 0.5)
//	pick'em tokens  "pk", "level" -> 0
//
// Decimal commas are normalized to dots before any matching.

const number = `[+-]?\d+(?:\.\d+)?`

var (
	slashQuarterRe = regexp.MustCompile(`(` + number + `)\s*/\s*(` + number + `)`)
	dashQuarterRe  = regexp.MustCompile(`(` + number + `)\s*-\s*(` + number + `)`)
	plainNumberRe  = regexp.MustCompile(number)

	slashQuarterFullRe = regexp.MustCompile(`^(` + number + `)/(` + number + `)$`)
	dashQuarterFullRe  = regexp.MustCompile(`^(` + number + `)-(` + number + `)$`)
)

// maxPlausibleLine bounds the free-text number heuristic: bare values at or
// above this are treated as odds remnants or ids, never as a line.
const maxPlausibleLine = 50

// ParseLine parses a dedicated line field (object input). The whole string
// must be one of the recognized notations.
func ParseLine(s string) (float64, bool) {
	s = normalizeLineText(s)
	if s == "" {
		return 0, false
	}
	if isPickEm(s) {
		return 0, true
	}
	if m := slashQuarterFullRe.FindStringSubmatch(s); m != nil {
		return quarterMidpoint(m[1], m[2], false)
	}
	if m := dashQuarterFullRe.FindStringSubmatch(s); m != nil {
		if v, ok := quarterMidpoint(m[1], m[2], true); ok {
			return v, true
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}

// extractLine pulls a line value out of free text (with the odds marker
// already stripped). Quarter notations win over plain decimals; among plain
// decimals the last one below the plausibility bound is taken.
func extractLine(text string) (float64, bool) {
	text = normalizeLineText(text)
	if m := slashQuarterRe.FindStringSubmatch(text); m != nil {
		return quarterMidpoint(m[1], m[2], false)
	}
	if containsToken(text, "pk") || containsToken(text, "level") {
		return 0, true
	}
	if m := dashQuarterRe.FindStringSubmatch(text); m != nil {
		if v, ok := quarterMidpoint(m[1], m[2], true); ok {
			return v, true
		}
	}
	var (
		line  float64
		found bool
	)
	for _, tok := range plainNumberRe.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if math.Abs(v) < maxPlausibleLine {
			line, found = v, true
		}
	}
	return line, found
}

// quarterMidpoint resolves a two-part quarter line to its midpoint. For the
// dash notation, require the absolute halves to differ by exactly 0.5 so
// score-like strings ("2-1") are not mistaken for lines.
func quarterMidpoint(a, b string, requireHalfStep bool) (float64, bool) {
	av, errA := strconv.ParseFloat(a, 64)
	bv, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return 0, false
	}
	if requireHalfStep && math.Abs(math.Abs(av)-math.Abs(bv)) != 0.5 {
		return 0, false
	}
	return (av + bv) / 2, true
}

func normalizeLineText(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.ReplaceAll(s, ",", ".")
}

func isPickEm(s string) bool {
	return s == "pk" || s == "level"
}
