package candidate

import (
	"sort"

	"github.com/gofhir/loinc-mapper/term"
	"github.com/gofhir/loinc-mapper/terminology"
)

// Selection stage names, recorded on every scored candidate.
const (
	StageStrict  = "strict"
	StageRelaxed = "relaxed"
)

// Scored is a classified candidate with both stage scores attached.
type Scored struct {
	Detail *terminology.ConceptDetail
	Flags  Flags

	// PropertyMatch and ScaleMatch are evaluated against the original
	// (strict) score context.
	PropertyMatch bool
	ScaleMatch    bool

	// ScoreStrict and ScoreRelaxed are the scores under the strict and
	// relaxed contexts respectively.
	ScoreStrict  int
	ScoreRelaxed int

	// Score and Stage record the score and pass under which the
	// candidate was (or would have been) selected.
	Score int
	Stage string
}

// Select ranks the enriched candidates and picks up to topK. The
// strict pass enforces the intent's gates; when it yields fewer than
// topK picks, a relaxed pass over the survivors fills the remainder.
// Both passes are deterministic: ties preserve pool order.
//
// The returned best slice holds the picks in rank order; all holds
// every classified candidate with both stage scores, in pool order,
// for auditing.
func Select(details []*terminology.ConceptDetail, normalized string, in term.Intent, topK int) (best, all []Scored) {
	strictCtx := ScoreContext{
		Normalized:         normalized,
		ExpectedProperties: in.ExpectedProperties,
		NumericExpected:    in.NumericExpected,
		AllowDerived:       in.AllowDerived,
		AllowPercentile:    in.AllowPercentile,
		WantsLaterality:    in.WantsLaterality,
	}
	relaxedCtx := strictCtx
	relaxedCtx.NumericExpected = false
	relaxedCtx.AllowDerived = true
	relaxedCtx.AllowPercentile = true

	all = make([]Scored, 0, len(details))
	for _, d := range details {
		f := Classify(d)
		s := Scored{
			Detail:        d,
			Flags:         f,
			PropertyMatch: strictCtx.PropertyMatch(d),
			ScaleMatch:    strictCtx.ScaleMatch(d),
			ScoreStrict:   Score(d, f, strictCtx),
			ScoreRelaxed:  Score(d, f, relaxedCtx),
		}
		all = append(all, s)
	}

	strict := make([]Scored, 0, len(all))
	for _, s := range all {
		if acceptableStrict(s, in) {
			s.Score = s.ScoreStrict
			s.Stage = StageStrict
			strict = append(strict, s)
		}
	}
	rank(strict)
	if len(strict) > topK {
		strict = strict[:topK]
	}
	best = strict

	if len(best) < topK {
		chosen := make(map[string]bool, len(best))
		for _, s := range best {
			chosen[s.Detail.Code] = true
		}
		relaxed := make([]Scored, 0, len(all))
		for _, s := range all {
			if chosen[s.Detail.Code] || !acceptableRelaxed(s) {
				continue
			}
			s.Score = s.ScoreRelaxed
			s.Stage = StageRelaxed
			relaxed = append(relaxed, s)
		}
		rank(relaxed)
		for _, s := range relaxed {
			if len(best) >= topK {
				break
			}
			best = append(best, s)
		}
	}
	return best, all
}

// acceptableStrict applies the hard exclusions plus the intent gates.
func acceptableStrict(s Scored, in term.Intent) bool {
	if s.Flags.IsPart || s.Flags.IsAnswerList || s.Flags.IsDeprecated {
		return false
	}
	if s.Flags.IsDerived && !in.AllowDerived {
		return false
	}
	if s.Flags.IsPercentile && !in.AllowPercentile {
		return false
	}
	if in.NumericExpected {
		if !s.ScaleMatch {
			return false
		}
		if len(in.ExpectedProperties) > 0 && !s.PropertyMatch {
			return false
		}
	}
	return true
}

// acceptableRelaxed keeps only the hard exclusions. Parts, answer-list
// entries, and deprecated codes never surface, even relaxed.
func acceptableRelaxed(s Scored) bool {
	return !s.Flags.IsPart && !s.Flags.IsAnswerList && !s.Flags.IsDeprecated
}

// rank sorts descending by score with deterministic tie-breaks:
// property match, scale match, non-derived, non-percentile. Remaining
// ties keep pool order.
func rank(ss []Scored) {
	sort.SliceStable(ss, func(i, j int) bool {
		a, b := ss[i], ss[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PropertyMatch != b.PropertyMatch {
			return a.PropertyMatch
		}
		if a.ScaleMatch != b.ScaleMatch {
			return a.ScaleMatch
		}
		if a.Flags.IsDerived != b.Flags.IsDerived {
			return !a.Flags.IsDerived
		}
		if a.Flags.IsPercentile != b.Flags.IsPercentile {
			return !a.Flags.IsPercentile
		}
		return false
	})
}
