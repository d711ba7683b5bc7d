package term

import (
	"slices"
	"strings"
)

// Intent captures what kind of observation a term is asking for. It is
// computed once per term and drives both hard gates (strict stage) and
// scoring preferences.
type Intent struct {
	// NumericExpected is true when the term implies a numeric value
	// (explicit unit hint or a measurement keyword).
	NumericExpected bool

	// ExpectedProperties is the set of acceptable LOINC PROPERTY values,
	// or nil when the term does not gate on PROPERTY.
	ExpectedProperties []string

	// IsRatio is true for ratio shorthand like "HC/AC".
	IsRatio bool

	// AllowDerived permits derived/methodized entries without the strict
	// gate (e.g. estimated fetal weight is inherently derived).
	AllowDerived bool

	// AllowPercentile permits percentile entries without the strict gate.
	AllowPercentile bool

	// WantsLaterality is true when the term itself names a side, so a
	// left/right marker in a display is not penalized.
	WantsLaterality bool
}

// WantsProperty reports whether prop satisfies the expected-property gate.
// An empty expectation accepts everything.
func (in Intent) WantsProperty(prop string) bool {
	if len(in.ExpectedProperties) == 0 {
		return true
	}
	return slices.Contains(in.ExpectedProperties, strings.TrimSpace(prop))
}

// Policy hooks for the allow-derived/allow-percentile heuristics. The
// defaults are deliberately simple keyword sniffs on the raw term; callers
// with better knowledge of their worksheet can override them.
type Policy struct {
	AllowDerived    func(raw string) bool
	AllowPercentile func(raw string) bool
}

// DefaultPolicy returns the shipped keyword heuristics: "estimated" or an
// estimated-weight abbreviation allows derived entries, "percentile" allows
// percentile entries.
func DefaultPolicy() Policy {
	return Policy{
		AllowDerived: func(raw string) bool {
			l := strings.ToLower(raw)
			return strings.Contains(l, "estimated") || strings.Contains(l, "efw")
		},
		AllowPercentile: func(raw string) bool {
			return strings.Contains(strings.ToLower(raw), "percentile")
		},
	}
}

// unitTokens are explicit unit hints that imply a numeric observation.
var unitTokens = []string{"(cm)", "(mm)", "(g)", "(bpm)"}

// numericKeywords imply a numeric observation when present in the raw or
// normalized text.
var numericKeywords = []string{"length", "diameter", "circumference", "weight", "mass", "rate"}

// lengthFamily triggers the Len property expectation.
var lengthFamily = []string{"length", "femur", "humerus", "radius", "ulna", "tibia", "fibula", "long bone"}

// ClassifyIntent derives the Intent for a raw term and its normalized form
// under the given policy.
func ClassifyIntent(lx *Lexicon, raw, normalized string, pol Policy) Intent {
	text := strings.ToLower(raw + " " + normalized)
	rawLower := strings.ToLower(raw)
	stripped := StripUnits(raw)

	in := Intent{
		NumericExpected:    impliesNumeric(rawLower, text),
		ExpectedProperties: expectedProperties(text, stripped),
		IsRatio:            strings.Contains(text, " ratio ") || strings.Contains(stripped, "/"),
		WantsLaterality:    strings.Contains(rawLower, "left") || strings.Contains(rawLower, "right"),
	}
	if pol.AllowDerived != nil {
		in.AllowDerived = pol.AllowDerived(raw)
	}
	if pol.AllowPercentile != nil {
		in.AllowPercentile = pol.AllowPercentile(raw)
	}
	return in
}

func impliesNumeric(rawLower, text string) bool {
	for _, u := range unitTokens {
		if strings.Contains(rawLower, u) {
			return true
		}
	}
	for _, k := range numericKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// expectedProperties picks the acceptable PROPERTY set by first-match
// priority. BPD sometimes files under Len instead of Diam, and cerebellum
// measurements appear under all three axes, hence the wider sets.
func expectedProperties(text, stripped string) []string {
	switch {
	case strings.Contains(text, "circumference"):
		return []string{"Circ"}
	case strings.Contains(text, "diameter") || strings.Contains(text, "bpd"):
		return []string{"Diam", "Len"}
	case containsAny(text, lengthFamily):
		return []string{"Len"}
	case strings.Contains(text, "heart rate") || strings.Contains(text, "fhr") || strings.Contains(text, "rate"):
		return []string{"Rate"}
	case strings.Contains(text, "estimated fetal weight") || strings.Contains(text, "efw") ||
		strings.Contains(text, "weight") || strings.Contains(text, "mass"):
		return []string{"Mass"}
	case strings.Contains(text, "cisterna magna"):
		return []string{"Diam", "Len"}
	case strings.Contains(text, "cerebellum"):
		return []string{"Diam", "Len", "Circ"}
	case strings.Contains(text, " ratio ") || strings.Contains(stripped, "/"):
		return []string{"Rto"}
	}
	return nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
