package candidate

import (
	"context"
	"time"

	"github.com/gofhir/loinc-mapper/internal/logger"
	"github.com/gofhir/loinc-mapper/terminology"
)

// Enricher resolves pooled candidates to full concept details via
// lookup, pacing requests to stay polite to the service.
type Enricher struct {
	svc    terminology.Lookuper
	pacing time.Duration
	log    *logger.Logger
}

// NewEnricher creates an Enricher. pacing is the delay inserted before
// each lookup; zero disables pacing. A nil log falls back to the
// process-wide logger.
func NewEnricher(svc terminology.Lookuper, pacing time.Duration, log *logger.Logger) *Enricher {
	if log == nil {
		log = logger.Default()
	}
	return &Enricher{svc: svc, pacing: pacing, log: log}
}

// Enrich looks up each candidate in pool order. A candidate whose
// lookup fails is logged and dropped; the rest proceed. The pacing
// sleep respects ctx cancellation.
func (e *Enricher) Enrich(ctx context.Context, cands []terminology.Candidate) ([]*terminology.ConceptDetail, error) {
	details := make([]*terminology.ConceptDetail, 0, len(cands))
	for _, c := range cands {
		if e.pacing > 0 {
			t := time.NewTimer(e.pacing)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		d, err := e.svc.Lookup(ctx, c.Code)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Warn("enrich: lookup %s failed: %v", c.Code, err)
			continue
		}
		if d.Display == "" {
			d.Display = c.Display
		}
		details = append(details, d)
	}
	return details, nil
}
