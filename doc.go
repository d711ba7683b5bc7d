// Package loincmapper resolves free-text clinical measurement labels
// (e.g. "BPD (cm)", "HC/AC", "EFW Percentile") into LOINC observation codes
// using the LOINC FHIR Terminology Service.
//
// The resolution engine favors plain, reportable measurements: LOINC Parts
// and AnswerLists are always excluded, deprecated and derived/methodized
// entries are avoided unless the term explicitly asks for them, and numeric
// expectations (PROPERTY + SCALE) are enforced when a term implies units.
// Every accepted candidate carries feature flags so reviewers can see why it
// was ranked where it was.
//
// # Quick Start
//
//	import (
//	    lm "github.com/gofhir/loinc-mapper"
//	    "github.com/gofhir/loinc-mapper/engine"
//	    "github.com/gofhir/loinc-mapper/fhir"
//	)
//
//	creds, err := fhir.ResolveCredentials("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := fhir.NewClient(creds)
//
//	resolver := engine.New(client, lm.NewOptions(lm.WithTopK(5)))
//	report, err := resolver.ResolveAll(ctx, []string{"HC (cm)", "FL/AC"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range report.Rows() {
//	    fmt.Println(row.Code, row.Display)
//	}
//
// # Pipeline
//
// Each term flows through a fixed pipeline of small, composable stages:
//
//   - Normalize: strip unit hints, expand abbreviations, verbalize ratios
//   - Variants: expand the normalized term into LOINC-style query phrasings
//   - Gather: ValueSet/$expand per variant with fallback loosening and a
//     lightweight prefilter trim, deduplicated by code
//   - Enrich: CodeSystem/$lookup per surviving code (paced for politeness)
//   - Classify + Score: deterministic feature flags and integer scores
//   - Select: strict gates first, then a relaxed fallback pass
//
// Terms are independent of each other, so batches may be resolved in
// parallel with a bounded worker pool; ranking is unaffected by ordering.
//
// # Functional Options
//
//	resolver := engine.New(client, lm.NewOptions(
//	    lm.WithTopK(10),
//	    lm.WithCountPerVariant(100),
//	    lm.WithAudit(true),
//	    lm.WithPacing(200*time.Millisecond),
//	))
package loincmapper
