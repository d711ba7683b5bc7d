package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	lm "github.com/gofhir/loinc-mapper"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	termStyle = lipgloss.NewStyle().
			Bold(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// caveat is one warning attached to a term's best pick.
type caveat struct {
	term string
	bits []string
}

// PrintPreview writes a human-readable summary of the best pick per
// term, followed by a caveat banner for picks that look questionable
// for clinical reporting.
func PrintPreview(w io.Writer, report *lm.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("=== LOINC lookup preview (best per term) ==="))

	var caveats []caveat
	for i := range report.Results {
		res := &report.Results[i]
		best := res.Best()
		if best == nil {
			msg := lm.ErrNoCandidates
			if len(res.Rows) > 0 {
				msg = res.Rows[0].Err
			}
			fmt.Fprintf(w, "- %s: %s\n", termStyle.Render(res.Term), errStyle.Render("ERROR: "+msg))
			continue
		}
		fmt.Fprintf(w, "- %s: %s %s\n",
			termStyle.Render(res.Term),
			codeStyle.Render(best.Code),
			best.Display)

		if bits := bestRowCaveats(res.Term, best); len(bits) > 0 {
			caveats = append(caveats, caveat{term: res.Term, bits: bits})
		}
	}

	if len(caveats) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render("WARNING: Some 'best' picks have caveats:"))
		for _, c := range caveats {
			fmt.Fprintf(w, "  %s %s: %s\n", warnStyle.Render("*"), c.term, strings.Join(c.bits, "; "))
		}
		fmt.Fprintln(w, "  (See CSV columns is_derived/is_percentile/scale_match/property_match/stage/score.)")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "(See CSV for all matches and properties.)")
}

// bestRowCaveats flags properties that make a top pick questionable
// for clinical reporting.
func bestRowCaveats(rawTerm string, r *lm.ResultRow) []string {
	var bits []string
	if r.IsPart {
		bits = append(bits, "LOINC Part (not reportable)")
	}
	if r.IsAnswerList {
		bits = append(bits, "Answer list (not a measurement)")
	}
	if r.IsDeprecated {
		bits = append(bits, "DEPRECATED")
	}
	if r.IsDerived {
		bits = append(bits, "derived/methodized")
	}
	if r.IsPercentile {
		bits = append(bits, "percentile")
	}
	if numericHint(rawTerm) && (!r.PropertyMatch || !r.ScaleMatch) {
		bits = append(bits, "NOT Qn / PROPERTY mismatch for numeric intent")
	}
	return bits
}

var hintUnits = []string{"(cm)", "(mm)", "(g)", "(bpm)"}
var hintWords = []string{"length", "diameter", "circumference", "weight", "mass", "rate"}

func numericHint(rawTerm string) bool {
	lower := strings.ToLower(rawTerm)
	for _, u := range hintUnits {
		if strings.Contains(lower, u) {
			return true
		}
	}
	for _, k := range hintWords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
