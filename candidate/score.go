package candidate

import (
	"strings"

	"github.com/gofhir/loinc-mapper/terminology"
)

// ScoreContext carries the query-side inputs to scoring. It is built
// from the classified intent and may be loosened for the relaxed
// selection pass.
type ScoreContext struct {
	// Normalized is the normalized query text; its word tokens earn a
	// point each when present in the display.
	Normalized string
	// ExpectedProperties lists acceptable LOINC PROPERTY codes, in
	// priority order. Empty means no expectation.
	ExpectedProperties []string
	// NumericExpected reports that the query implies a quantitative
	// result.
	NumericExpected bool
	// AllowDerived softens the penalty for calculated values.
	AllowDerived bool
	// AllowPercentile softens the penalty for percentile concepts.
	AllowPercentile bool
	// WantsLaterality suppresses the penalty for sided concepts.
	WantsLaterality bool
}

// PropertyMatch reports whether the concept satisfies the property
// expectation. An empty expectation accepts everything.
func (sc ScoreContext) PropertyMatch(d *terminology.ConceptDetail) bool {
	if len(sc.ExpectedProperties) == 0 {
		return true
	}
	return sc.propertyIn(d)
}

// propertyIn reports membership in a non-empty expected set.
func (sc ScoreContext) propertyIn(d *terminology.ConceptDetail) bool {
	prop := strings.TrimSpace(d.Property)
	for _, p := range sc.ExpectedProperties {
		if prop == strings.TrimSpace(p) {
			return true
		}
	}
	return false
}

// ScaleMatch reports whether the concept's scale satisfies the numeric
// expectation. Without a numeric expectation every scale matches.
func (sc ScoreContext) ScaleMatch(d *terminology.ConceptDetail) bool {
	if !sc.NumericExpected {
		return true
	}
	return d.IsQuantitative()
}

// Score computes the deterministic integer score for a classified
// concept. Identical inputs always produce the identical score.
func Score(d *terminology.ConceptDetail, f Flags, sc ScoreContext) int {
	display := strings.ToLower(d.Display)
	class := strings.ToLower(d.Class)
	score := 0

	if len(sc.ExpectedProperties) > 0 && sc.propertyIn(d) {
		score += 12
	}
	if d.IsQuantitative() {
		score += 2
		if sc.NumericExpected {
			score += 6
		}
	}
	if strings.Contains(class, "us") || strings.Contains(class, "ob") ||
		strings.Contains(display, "ultrasound") || strings.Contains(display, " us") {
		score += 3
	}
	if fetalContext(d, display) {
		score += 2
	}
	if f.IsDerived {
		if sc.AllowDerived {
			score -= 4
		} else {
			score -= 10
		}
	}
	if f.IsPercentile {
		if sc.AllowPercentile {
			score -= 2
		} else {
			score -= 8
		}
	}
	if f.HasLaterality && !sc.WantsLaterality {
		score -= 3
	}
	if sc.NumericExpected && nonNumericScale(d, display) {
		score -= 4
	}
	for _, tok := range strings.Fields(strings.ToLower(sc.Normalized)) {
		if strings.Contains(display, tok) {
			score++
		}
	}
	if !f.IsPart && !f.IsAnswerList {
		score++
	}
	if !f.IsDeprecated {
		score++
	}
	return score
}

func fetalContext(d *terminology.ConceptDetail, display string) bool {
	if strings.Contains(display, "fetal") || strings.Contains(display, "fetus") {
		return true
	}
	if strings.EqualFold(d.SuperSystem, "fetus") {
		return true
	}
	if strings.Contains(strings.ToLower(d.SystemCore), "fetus") ||
		strings.Contains(strings.ToLower(d.System), "fetus") {
		return true
	}
	return false
}

func nonNumericScale(d *terminology.ConceptDetail, display string) bool {
	if strings.EqualFold(d.Scale, "Ord") || strings.EqualFold(d.Scale, "Nar") {
		return true
	}
	return strings.Contains(display, "narrative")
}
