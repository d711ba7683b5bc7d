package candidate

import (
	"testing"

	"github.com/gofhir/loinc-mapper/terminology"
)

func detail(code, display, status string, props map[string]string) *terminology.ConceptDetail {
	return terminology.NewConceptDetail(code, display, "", status, props)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    *terminology.ConceptDetail
		want Flags
	}{
		{
			name: "plain measurement",
			d:    detail("11820-8", "Head [Circumference] fetus US", "ACTIVE", nil),
			want: Flags{},
		},
		{
			name: "part code",
			d:    detail("LP12345-6", "Head circumference", "ACTIVE", nil),
			want: Flags{IsPart: true},
		},
		{
			name: "answer list code",
			d:    detail("LA6115-2", "Cephalic", "ACTIVE", nil),
			want: Flags{IsAnswerList: true},
		},
		{
			name: "deprecated by status",
			d:    detail("1234-5", "Some measurement", "DEPRECATED", nil),
			want: Flags{IsDeprecated: true},
		},
		{
			name: "deprecated by display",
			d:    detail("1234-5", "Some measurement (Deprecated)", "ACTIVE", nil),
			want: Flags{IsDeprecated: true},
		},
		{
			name: "derived by estimation wording",
			d:    detail("1234-5", "Gestational age estimated from something", "ACTIVE", nil),
			want: Flags{IsDerived: true},
		},
		{
			name: "derived by named method",
			d:    detail("11727-5", "Fetal body weight by Hadlock method", "ACTIVE", nil),
			want: Flags{IsDerived: true},
		},
		{
			name: "derived by eponym",
			d:    detail("1234-5", "Fetal weight Hadlock estimate", "ACTIVE", nil),
			want: Flags{IsDerived: true},
		},
		{
			name: "derived by indirect dating",
			d:    detail("1234-5", "Gestational age by LMP", "ACTIVE", nil),
			want: Flags{IsDerived: true},
		},
		{
			name: "percentile",
			d:    detail("1234-5", "Fetal body weight percentile", "ACTIVE", nil),
			want: Flags{IsPercentile: true},
		},
		{
			name: "laterality word",
			d:    detail("1234-5", "Left kidney length", "ACTIVE", nil),
			want: Flags{HasLaterality: true},
		},
		{
			name: "laterality needs word boundary",
			d:    detail("1234-5", "Cleft palate assessment", "ACTIVE", nil),
			want: Flags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.d); got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
