// Package report renders batch results: CSV files matching the
// long-form result schema, and a styled console preview with caveat
// warnings.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	lm "github.com/gofhir/loinc-mapper"
)

var resultHeader = []string{
	"search_term", "normalized_query", "rank", "loinc_code", "display",
	"definition", "status", "class", "system", "property", "time",
	"method", "scale", "example_units", "system_core", "super_system",
	"time_core", "time_modifier", "analyte", "analyte_core",
	"analyte_suffix", "analyte_numerator", "analyte_divisor",
	"analyte_divisor_suffix", "category", "search_terms", "display_name",
	"is_part", "is_answer_list", "is_deprecated", "is_derived",
	"is_percentile", "has_laterality", "property_match", "scale_match",
	"stage", "score", "error",
}

var auditHeader = []string{
	"search_term", "normalized_query", "loinc_code", "display", "status",
	"definition", "class", "system", "property", "time", "method",
	"scale", "example_units", "system_core", "super_system", "time_core",
	"time_modifier", "analyte", "analyte_core", "analyte_suffix",
	"analyte_numerator", "analyte_divisor", "analyte_divisor_suffix",
	"category", "search_terms", "display_name", "is_part",
	"is_answer_list", "is_deprecated", "is_derived", "is_percentile",
	"has_laterality", "property_match", "scale_match", "score_strict",
	"score_relaxed",
}

// WriteResults writes the best-rows CSV to w.
func WriteResults(w io.Writer, rows []lm.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(resultRecord(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultsFile writes the best-rows CSV to path.
func WriteResultsFile(path string, rows []lm.ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteResults(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteAudit writes the all-candidates CSV to w.
func WriteAudit(w io.Writer, rows []lm.AuditRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(auditRecord(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAuditFile writes the all-candidates CSV to path.
func WriteAuditFile(path string, rows []lm.AuditRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteAudit(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// resultRecord flattens one row. Sentinel rows keep only the term, its
// normalization, and the error; every other field stays blank.
func resultRecord(r *lm.ResultRow) []string {
	if r.Err != "" {
		rec := make([]string, len(resultHeader))
		rec[0] = r.SearchTerm
		rec[1] = r.NormalizedQuery
		rec[len(rec)-1] = r.Err
		return rec
	}
	return append([]string{
		r.SearchTerm,
		r.NormalizedQuery,
		strconv.Itoa(r.Rank),
	}, append(conceptRecord(&r.ConceptColumns),
		boolField(r.IsPart),
		boolField(r.IsAnswerList),
		boolField(r.IsDeprecated),
		boolField(r.IsDerived),
		boolField(r.IsPercentile),
		boolField(r.HasLaterality),
		boolField(r.PropertyMatch),
		boolField(r.ScaleMatch),
		r.Stage,
		strconv.Itoa(r.Score),
		"",
	)...)
}

func auditRecord(r *lm.AuditRow) []string {
	c := &r.ConceptColumns
	return append([]string{
		r.SearchTerm,
		r.NormalizedQuery,
		c.Code,
		c.Display,
		c.Status,
		c.Definition,
	}, append(axisRecord(c),
		boolField(r.IsPart),
		boolField(r.IsAnswerList),
		boolField(r.IsDeprecated),
		boolField(r.IsDerived),
		boolField(r.IsPercentile),
		boolField(r.HasLaterality),
		boolField(r.PropertyMatch),
		boolField(r.ScaleMatch),
		strconv.Itoa(r.ScoreStrict),
		strconv.Itoa(r.ScoreRelaxed),
	)...)
}

func conceptRecord(c *lm.ConceptColumns) []string {
	return append([]string{
		c.Code,
		c.Display,
		c.Definition,
		c.Status,
	}, axisRecord(c)...)
}

// axisRecord covers the columns from class through display_name,
// shared by both schemas.
func axisRecord(c *lm.ConceptColumns) []string {
	return []string{
		c.Class,
		c.System,
		c.Property,
		c.TimeAspect,
		c.Method,
		c.Scale,
		c.ExampleUnits,
		c.SystemCore,
		c.SuperSystem,
		c.TimeCore,
		c.TimeModifier,
		c.Analyte,
		c.AnalyteCore,
		c.AnalyteSuffix,
		c.AnalyteNumerator,
		c.AnalyteDivisor,
		c.AnalyteDivisorSuffix,
		c.Category,
		c.SearchTerms,
		c.DisplayName,
	}
}

func boolField(b bool) string {
	return strconv.FormatBool(b)
}
