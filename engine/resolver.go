// Package engine orchestrates the term resolution pipeline: normalize,
// classify intent, generate variants, gather candidates, enrich, and
// select the top matches.
package engine

import (
	"context"
	"fmt"

	lm "github.com/gofhir/loinc-mapper"
	"github.com/gofhir/loinc-mapper/candidate"
	"github.com/gofhir/loinc-mapper/term"
	"github.com/gofhir/loinc-mapper/terminology"
	"github.com/gofhir/loinc-mapper/worker"
)

// Resolver maps clinical search terms to ranked LOINC codes.
type Resolver struct {
	svc  terminology.Service
	opts lm.Options
}

// New creates a Resolver over the given terminology service.
func New(svc terminology.Service, opts lm.Options) *Resolver {
	if opts.Lexicon == nil {
		opts.Lexicon = term.DefaultLexicon()
	}
	if opts.Logger == nil {
		opts.Logger = lm.DefaultOptions().Logger
	}
	return &Resolver{svc: svc, opts: opts}
}

// ResolveTerm runs the full pipeline for one raw search term. The
// returned result always contains at least one row: ranked matches on
// success, a single sentinel row when the term yields nothing.
func (r *Resolver) ResolveTerm(ctx context.Context, rawTerm string) (*lm.TermResult, error) {
	lx := r.opts.Lexicon
	normalized := term.Normalize(lx, rawTerm)
	intent := term.ClassifyIntent(lx, rawTerm, normalized, r.opts.Policy)
	variants := term.Variants(lx, rawTerm, normalized, intent)

	r.opts.Logger.Debug("resolve %q: normalized=%q variants=%d", rawTerm, normalized, len(variants))

	gatherer := candidate.NewGatherer(r.svc, candidate.GatherConfig{
		Count:          r.opts.CountPerVariant,
		PerVariantTrim: r.opts.EffectivePerVariantTrim(),
		GlobalCap:      r.opts.GlobalCap,
		SoftContext:    lx.SoftContext,
		Logger:         r.opts.Logger,
	})
	pooled, err := gatherer.Gather(ctx, variants)
	if err != nil {
		return nil, fmt.Errorf("gathering candidates for %q: %w", rawTerm, err)
	}
	if len(pooled) == 0 {
		return &lm.TermResult{
			Term:       rawTerm,
			Normalized: normalized,
			Rows:       []lm.ResultRow{lm.NewErrorRow(rawTerm, normalized, lm.ErrNoCandidates)},
		}, nil
	}

	enricher := candidate.NewEnricher(r.svc, r.opts.Pacing, r.opts.Logger)
	details, err := enricher.Enrich(ctx, pooled)
	if err != nil {
		return nil, fmt.Errorf("enriching candidates for %q: %w", rawTerm, err)
	}

	best, all := candidate.Select(details, normalized, intent, r.opts.TopK)

	result := &lm.TermResult{Term: rawTerm, Normalized: normalized}
	if len(best) == 0 {
		result.Rows = []lm.ResultRow{lm.NewErrorRow(rawTerm, normalized, lm.ErrNoAcceptableCandid)}
	} else {
		for i, s := range best {
			result.Rows = append(result.Rows, lm.NewResultRow(rawTerm, normalized, i+1, s))
		}
	}
	if r.opts.Audit {
		for _, s := range all {
			result.Audit = append(result.Audit, lm.NewAuditRow(rawTerm, normalized, s))
		}
	}
	return result, nil
}

// ResolveAll resolves a batch of terms, preserving input order in the
// report. When the service supports probing, credentials are verified
// once up front so an auth problem fails the batch immediately instead
// of once per term.
func (r *Resolver) ResolveAll(ctx context.Context, terms []string) (*lm.Report, error) {
	if len(terms) == 0 {
		terms = term.DefaultTerms
	}

	if p, ok := r.svc.(terminology.Prober); ok {
		if err := p.Probe(ctx); err != nil {
			return nil, fmt.Errorf("terminology service probe failed: %w", err)
		}
	}

	if r.opts.Parallelism > 1 {
		return r.resolveParallel(ctx, terms)
	}

	report := &lm.Report{}
	for _, t := range terms {
		res, err := r.ResolveTerm(ctx, t)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, *res)
	}
	return report, nil
}

func (r *Resolver) resolveParallel(ctx context.Context, terms []string) (*lm.Report, error) {
	pool := worker.NewPool(ctx, r, r.opts.Parallelism)
	for i, t := range terms {
		if !pool.Submit(worker.Job{Index: i, Term: t}) {
			break
		}
	}
	batch := pool.CloseAndWait()
	if err := batch.FirstError(); err != nil {
		return nil, err
	}

	report := &lm.Report{}
	for _, jr := range batch.Results {
		if jr.Result != nil {
			report.Results = append(report.Results, *jr.Result)
		}
	}
	return report, nil
}
