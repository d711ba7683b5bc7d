package candidate

import (
	"regexp"
	"strings"

	"github.com/gofhir/loinc-mapper/terminology"
)

// Flags captures the structural properties of a concept that drive
// scoring and filtering. All flags are derived from the concept detail
// alone; none depend on the query.
type Flags struct {
	// IsPart reports that the code is a LOINC part (LP prefix) rather
	// than a reportable term.
	IsPart bool
	// IsAnswerList reports that the code is an answer-list entry (LA
	// prefix).
	IsAnswerList bool
	// IsDeprecated reports that the concept status is DEPRECATED.
	IsDeprecated bool
	// IsDerived reports that the display suggests a calculated or
	// estimated value rather than a direct measurement.
	IsDerived bool
	// IsPercentile reports that the display describes a percentile.
	IsPercentile bool
	// HasLaterality reports that the display names a side (left or
	// right) as a whole word.
	HasLaterality bool
}

const (
	partPrefix       = "LP"
	answerListPrefix = "LA"
)

// Formula eponyms. A display naming one of these describes a value
// computed from other measurements.
var derivedEponyms = []string{"hadlock", "jeanty", "merz", "ott", "goldstein"}

// Indirect dating methods. Gestational age terms citing these are
// estimates, not sonographic measurements.
var indirectDating = []string{"amniocentesis", "lmp", "menstrual period"}

var lateralityRe = regexp.MustCompile(`\b(left|right)\b`)

// Classify derives Flags from a concept detail.
func Classify(d *terminology.ConceptDetail) Flags {
	display := strings.ToLower(d.Display)
	return Flags{
		IsPart:        strings.HasPrefix(d.Code, partPrefix),
		IsAnswerList:  strings.HasPrefix(d.Code, answerListPrefix),
		IsDeprecated:  isDeprecated(d.Status, display),
		IsDerived:     isDerivedDisplay(display),
		IsPercentile:  strings.Contains(display, "percentile"),
		HasLaterality: lateralityRe.MatchString(display),
	}
}

func isDeprecated(status, display string) bool {
	if strings.EqualFold(strings.TrimSpace(status), "DEPRECATED") {
		return true
	}
	return strings.Contains(display, "deprecated")
}

// isDerivedDisplay sniffs derived/methodized wording: explicit
// estimation, a named computation method, a formula eponym, or an
// indirect dating reference.
func isDerivedDisplay(display string) bool {
	if strings.Contains(display, "estimated from") {
		return true
	}
	if strings.Contains(display, " by ") && strings.Contains(display, " method") {
		return true
	}
	for _, e := range derivedEponyms {
		if strings.Contains(display, e) {
			return true
		}
	}
	for _, m := range indirectDating {
		if strings.Contains(display, m) {
			return true
		}
	}
	return false
}
