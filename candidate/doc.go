// Package candidate classifies, scores, and ranks LOINC candidates.
//
// The pipeline runs in fixed stages: Gather collects raw expansion hits
// across query variants into an ordered, deduplicated pool, Enrich
// resolves each surviving code to a full concept detail, Classify
// derives structural flags from the detail, Score assigns a
// deterministic integer score, and Select produces the final ranked
// picks in two passes (strict, then relaxed).
package candidate
