package report

import (
	"bytes"
	"strings"
	"testing"

	lm "github.com/gofhir/loinc-mapper"
	"github.com/gofhir/loinc-mapper/candidate"
	"github.com/gofhir/loinc-mapper/terminology"
)

func TestPrintPreview(t *testing.T) {
	good := scored("11820-8", "Head Circumference fetus US")
	derived := candidate.Scored{
		Detail: terminology.NewConceptDetail(
			"56053-3", "Fetal weight by Hadlock method", "", "ACTIVE", nil),
		Flags:         candidate.Flags{IsDerived: true},
		PropertyMatch: true,
		ScaleMatch:    true,
		Stage:         candidate.StageRelaxed,
	}

	rep := &lm.Report{Results: []lm.TermResult{
		{
			Term: "HC (cm)",
			Rows: []lm.ResultRow{lm.NewResultRow("HC (cm)", "head circumference", 1, good)},
		},
		{
			Term: "EFW (g)",
			Rows: []lm.ResultRow{lm.NewResultRow("EFW (g)", "estimated fetal weight", 1, derived)},
		},
		{
			Term: "Bogus",
			Rows: []lm.ResultRow{lm.NewErrorRow("Bogus", "bogus", lm.ErrNoCandidates)},
		},
	}}

	var buf bytes.Buffer
	PrintPreview(&buf, rep)
	out := buf.String()

	if !strings.Contains(out, "LOINC lookup preview") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "11820-8") || !strings.Contains(out, "Head Circumference fetus US") {
		t.Errorf("missing best pick line: %q", out)
	}
	if !strings.Contains(out, "ERROR: "+lm.ErrNoCandidates) {
		t.Errorf("missing sentinel line: %q", out)
	}
	if !strings.Contains(out, "WARNING: Some 'best' picks have caveats:") {
		t.Errorf("missing caveat banner: %q", out)
	}
	if !strings.Contains(out, "derived/methodized") {
		t.Errorf("missing derived caveat: %q", out)
	}
}

func TestPrintPreviewNoCaveats(t *testing.T) {
	rep := &lm.Report{Results: []lm.TermResult{
		{
			Term: "HC (cm)",
			Rows: []lm.ResultRow{lm.NewResultRow("HC (cm)", "head circumference", 1, scored("11820-8", "Head Circumference fetus US"))},
		},
	}}

	var buf bytes.Buffer
	PrintPreview(&buf, rep)
	if strings.Contains(buf.String(), "WARNING") {
		t.Errorf("unexpected caveat banner: %q", buf.String())
	}
}
