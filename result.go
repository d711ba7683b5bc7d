package loincmapper

import (
	"github.com/gofhir/loinc-mapper/candidate"
	"github.com/gofhir/loinc-mapper/terminology"
)

// Sentinel error messages recorded on result rows when a term yields
// nothing.
const (
	ErrNoCandidates       = "No candidates returned"
	ErrNoAcceptableCandid = "No acceptable matches after filtering"
)

// ConceptColumns holds the detail columns shared by best rows and
// audit rows.
type ConceptColumns struct {
	Code         string
	Display      string
	Definition   string
	Status       string
	Class        string
	System       string
	Property     string
	TimeAspect   string
	Method       string
	Scale        string
	ExampleUnits string
	SystemCore   string
	SuperSystem  string

	// Secondary axis decompositions, present when the service returns
	// them.
	TimeCore             string
	TimeModifier         string
	Analyte              string
	AnalyteCore          string
	AnalyteSuffix        string
	AnalyteNumerator     string
	AnalyteDivisor       string
	AnalyteDivisorSuffix string
	Category             string
	SearchTerms          string
	DisplayName          string
}

func conceptColumns(d *terminology.ConceptDetail) ConceptColumns {
	extra := func(key string) string {
		return d.Extra[key]
	}
	return ConceptColumns{
		Code:                 d.Code,
		Display:              d.Display,
		Definition:           d.Definition,
		Status:               d.Status,
		Class:                d.Class,
		System:               d.System,
		Property:             d.Property,
		TimeAspect:           d.TimeAspect,
		Method:               d.Method,
		Scale:                d.Scale,
		ExampleUnits:         d.ExampleUnits,
		SystemCore:           d.SystemCore,
		SuperSystem:          d.SuperSystem,
		TimeCore:             extra("time-core"),
		TimeModifier:         extra("time-modifier"),
		Analyte:              extra("analyte"),
		AnalyteCore:          extra("analyte-core"),
		AnalyteSuffix:        extra("analyte-suffix"),
		AnalyteNumerator:     extra("analyte-numerator"),
		AnalyteDivisor:       extra("analyte-divisor"),
		AnalyteDivisorSuffix: extra("analyte-divisor-suffix"),
		Category:             extra("category"),
		SearchTerms:          extra("search"),
		DisplayName:          extra("DisplayName"),
	}
}

// ResultRow is one ranked match for a search term, or a sentinel row
// when the term produced nothing. When Err is non-empty every field
// except SearchTerm and NormalizedQuery is zero.
type ResultRow struct {
	SearchTerm      string
	NormalizedQuery string

	// Rank is 1-based; 0 on sentinel rows.
	Rank int

	ConceptColumns

	IsPart        bool
	IsAnswerList  bool
	IsDeprecated  bool
	IsDerived     bool
	IsPercentile  bool
	HasLaterality bool
	PropertyMatch bool
	ScaleMatch    bool

	// Stage records which selection pass produced the row.
	Stage string
	Score int

	Err string
}

// NewResultRow builds a ranked row from a selected candidate.
func NewResultRow(searchTerm, normalized string, rank int, s candidate.Scored) ResultRow {
	return ResultRow{
		SearchTerm:      searchTerm,
		NormalizedQuery: normalized,
		Rank:            rank,
		ConceptColumns:  conceptColumns(s.Detail),
		IsPart:          s.Flags.IsPart,
		IsAnswerList:    s.Flags.IsAnswerList,
		IsDeprecated:    s.Flags.IsDeprecated,
		IsDerived:       s.Flags.IsDerived,
		IsPercentile:    s.Flags.IsPercentile,
		HasLaterality:   s.Flags.HasLaterality,
		PropertyMatch:   s.PropertyMatch,
		ScaleMatch:      s.ScaleMatch,
		Stage:           s.Stage,
		Score:           s.Score,
	}
}

// NewErrorRow builds a sentinel row carrying only the term, its
// normalization, and the error message.
func NewErrorRow(searchTerm, normalized, msg string) ResultRow {
	return ResultRow{
		SearchTerm:      searchTerm,
		NormalizedQuery: normalized,
		Err:             msg,
	}
}

// AuditRow is one enriched candidate with both stage scores, emitted
// when audit mode is on. Rows appear in pool order, selected or not.
type AuditRow struct {
	SearchTerm      string
	NormalizedQuery string

	ConceptColumns

	IsPart        bool
	IsAnswerList  bool
	IsDeprecated  bool
	IsDerived     bool
	IsPercentile  bool
	HasLaterality bool
	PropertyMatch bool
	ScaleMatch    bool

	ScoreStrict  int
	ScoreRelaxed int
}

// NewAuditRow builds an audit row from a classified candidate.
func NewAuditRow(searchTerm, normalized string, s candidate.Scored) AuditRow {
	return AuditRow{
		SearchTerm:      searchTerm,
		NormalizedQuery: normalized,
		ConceptColumns:  conceptColumns(s.Detail),
		IsPart:          s.Flags.IsPart,
		IsAnswerList:    s.Flags.IsAnswerList,
		IsDeprecated:    s.Flags.IsDeprecated,
		IsDerived:       s.Flags.IsDerived,
		IsPercentile:    s.Flags.IsPercentile,
		HasLaterality:   s.Flags.HasLaterality,
		PropertyMatch:   s.PropertyMatch,
		ScaleMatch:      s.ScaleMatch,
		ScoreStrict:     s.ScoreStrict,
		ScoreRelaxed:    s.ScoreRelaxed,
	}
}

// TermResult holds everything one term produced.
type TermResult struct {
	Term       string
	Normalized string
	Rows       []ResultRow
	Audit      []AuditRow
}

// Best returns the top-ranked non-sentinel row, or nil.
func (r *TermResult) Best() *ResultRow {
	for i := range r.Rows {
		if r.Rows[i].Err == "" {
			return &r.Rows[i]
		}
	}
	return nil
}

// Report aggregates results across a batch of terms, in input order.
type Report struct {
	Results []TermResult
}

// Rows returns every best row across all terms, in order.
func (r *Report) Rows() []ResultRow {
	var rows []ResultRow
	for i := range r.Results {
		rows = append(rows, r.Results[i].Rows...)
	}
	return rows
}

// AuditRows returns every audit row across all terms, in order.
func (r *Report) AuditRows() []AuditRow {
	var rows []AuditRow
	for i := range r.Results {
		rows = append(rows, r.Results[i].Audit...)
	}
	return rows
}
