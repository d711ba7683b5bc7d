package candidate

import (
	"testing"

	"github.com/gofhir/loinc-mapper/terminology"
)

func qnProps(property string) map[string]string {
	return map[string]string{
		terminology.PropProperty: property,
		terminology.PropScale:    "Qn",
	}
}

func TestScoreComponents(t *testing.T) {
	base := ScoreContext{}

	tests := []struct {
		name string
		d    *terminology.ConceptDetail
		sc   ScoreContext
		want int
	}{
		{
			name: "empty everything gets safety nudges only",
			d:    detail("1-1", "x", "ACTIVE", nil),
			sc:   base,
			// not part/answer list +1, not deprecated +1
			want: 2,
		},
		{
			name: "property match dominates",
			d:    detail("1-1", "x", "ACTIVE", map[string]string{terminology.PropProperty: "Circ"}),
			sc:   ScoreContext{ExpectedProperties: []string{"Circ"}},
			want: 12 + 2,
		},
		{
			name: "no property bonus without expectation",
			d:    detail("1-1", "x", "ACTIVE", map[string]string{terminology.PropProperty: "Circ"}),
			sc:   base,
			want: 2,
		},
		{
			name: "quantitative nudge",
			d:    detail("1-1", "x", "ACTIVE", qnProps("")),
			sc:   base,
			want: 2 + 2,
		},
		{
			name: "quantitative with numeric intent",
			d:    detail("1-1", "x", "ACTIVE", qnProps("")),
			sc:   ScoreContext{NumericExpected: true},
			want: 6 + 2 + 2,
		},
		{
			name: "imaging class bonus",
			d:    detail("1-1", "x", "ACTIVE", map[string]string{terminology.PropClass: "OB.US"}),
			sc:   base,
			want: 3 + 2,
		},
		{
			name: "fetal context bonus",
			d:    detail("1-1", "Fetus something", "ACTIVE", nil),
			sc:   base,
			want: 2 + 2,
		},
		{
			name: "derived penalty hard",
			d:    detail("1-1", "weight by Hadlock method", "ACTIVE", nil),
			sc:   base,
			want: -10 + 2,
		},
		{
			name: "derived penalty softened",
			d:    detail("1-1", "weight by Hadlock method", "ACTIVE", nil),
			sc:   ScoreContext{AllowDerived: true},
			want: -4 + 2,
		},
		{
			name: "percentile penalty hard",
			d:    detail("1-1", "weight percentile", "ACTIVE", nil),
			sc:   base,
			want: -8 + 2,
		},
		{
			name: "percentile penalty softened",
			d:    detail("1-1", "weight percentile", "ACTIVE", nil),
			sc:   ScoreContext{AllowPercentile: true},
			want: -2 + 2,
		},
		{
			name: "laterality penalty",
			d:    detail("1-1", "left kidney", "ACTIVE", nil),
			sc:   base,
			want: -3 + 2,
		},
		{
			name: "laterality wanted",
			d:    detail("1-1", "left kidney", "ACTIVE", nil),
			sc:   ScoreContext{WantsLaterality: true},
			want: 2,
		},
		{
			name: "ordinal under numeric intent",
			d:    detail("1-1", "x", "ACTIVE", map[string]string{terminology.PropScale: "Ord"}),
			sc:   ScoreContext{NumericExpected: true},
			want: -4 + 2,
		},
		{
			name: "token overlap",
			d:    detail("1-1", "head circumference of fetus", "ACTIVE", nil),
			sc:   ScoreContext{Normalized: "head circumference"},
			// head +1, circumference +1, fetal context +2, nudges +2
			want: 1 + 1 + 2 + 2,
		},
		{
			name: "part code loses the safety nudge",
			d:    detail("LP1-1", "x", "ACTIVE", nil),
			sc:   base,
			want: 1,
		},
		{
			name: "deprecated loses the safety nudge",
			d:    detail("1-1", "x", "DEPRECATED", nil),
			sc:   base,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.d)
			if got := Score(tt.d, f, tt.sc); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	d := detail("11820-8", "Head [Circumference] fetus US", "ACTIVE", qnProps("Circ"))
	sc := ScoreContext{
		Normalized:         "head circumference",
		ExpectedProperties: []string{"Circ"},
		NumericExpected:    true,
	}
	f := Classify(d)
	first := Score(d, f, sc)
	for i := 0; i < 10; i++ {
		if got := Score(d, f, sc); got != first {
			t.Fatalf("score changed between runs: %d then %d", first, got)
		}
	}
}
