package candidate

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/gofhir/loinc-mapper/internal/logger"
	"github.com/gofhir/loinc-mapper/terminology"
)

// GatherConfig configures a Gatherer.
type GatherConfig struct {
	// Count is the number of hits requested from the service per
	// variant.
	Count int
	// PerVariantTrim caps how many prefiltered hits a single variant
	// may contribute to the pool.
	PerVariantTrim int
	// GlobalCap stops gathering once the pool reaches this size.
	GlobalCap int
	// SoftContext lists domain words that earn a prefilter bonus.
	SoftContext []string
	// Logger receives per-variant diagnostics. Defaults to the
	// process-wide logger.
	Logger *logger.Logger
}

// Gatherer collects expansion hits across query variants into a single
// ordered, deduplicated pool.
type Gatherer struct {
	svc  terminology.Expander
	conf GatherConfig
}

// NewGatherer creates a Gatherer over the given expansion service.
func NewGatherer(svc terminology.Expander, conf GatherConfig) *Gatherer {
	if conf.Logger == nil {
		conf.Logger = logger.Default()
	}
	return &Gatherer{svc: svc, conf: conf}
}

// Gather expands every variant in order and pools the results. Each
// code enters the pool once, at the position of its first appearance.
// A variant whose expansion fails is logged and skipped; a variant
// whose expansion comes back empty is loosened (bracket hints and
// punctuation stripped) and tried once more before moving on.
func (g *Gatherer) Gather(ctx context.Context, variants []string) ([]terminology.Candidate, error) {
	pool := newPool()
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pool.len() >= g.conf.GlobalCap {
			g.conf.Logger.Debug("gather: global cap %d reached", g.conf.GlobalCap)
			break
		}
		hits, err := g.expandWithFallback(ctx, v)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.conf.Logger.Warn("gather: expand %q failed: %v", v, err)
			continue
		}
		hits = g.prefilter(v, hits)
		if len(hits) > g.conf.PerVariantTrim {
			hits = hits[:g.conf.PerVariantTrim]
		}
		for _, h := range hits {
			if pool.len() >= g.conf.GlobalCap {
				break
			}
			pool.add(h)
		}
	}
	return pool.candidates(), nil
}

func (g *Gatherer) expandWithFallback(ctx context.Context, variant string) ([]terminology.Candidate, error) {
	hits, err := g.svc.Expand(ctx, variant, g.conf.Count)
	if err != nil || len(hits) > 0 {
		return hits, err
	}
	loosened, ok := loosenVariant(variant)
	if !ok {
		return nil, nil
	}
	g.conf.Logger.Debug("gather: %q empty, retrying loosened %q", variant, loosened)
	return g.svc.Expand(ctx, loosened, g.conf.Count)
}

// prefilter orders a variant's hits by a cheap relevance score before
// trimming, so the trim keeps the likeliest candidates: +2 per
// soft-context keyword in the display, +1 per variant token in the
// display. The sort is stable; equal scores keep server order.
func (g *Gatherer) prefilter(variant string, hits []terminology.Candidate) []terminology.Candidate {
	tokens := strings.Fields(strings.ToLower(variant))
	scores := make([]int, len(hits))
	for i, h := range hits {
		display := strings.ToLower(h.Display)
		s := 0
		for _, sc := range g.conf.SoftContext {
			if strings.Contains(display, sc) {
				s += 2
			}
		}
		for _, tok := range tokens {
			if strings.Contains(display, tok) {
				s++
			}
		}
		scores[i] = s
	}
	idx := make([]int, len(hits))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	out := make([]terminology.Candidate, len(hits))
	for i, j := range idx {
		out[i] = hits[j]
	}
	return out
}

var (
	bracketHintRe = regexp.MustCompile(`\[[^\]]+\]`)
	punctRe       = regexp.MustCompile(`[(),.:;]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// loosenVariant strips bracketed tokens and most punctuation (slashes
// survive, they carry ratio meaning) and collapses whitespace. It
// reports false when the result is too short or unchanged, meaning no
// fallback is worth trying.
func loosenVariant(variant string) (string, bool) {
	lv := bracketHintRe.ReplaceAllString(variant, "")
	lv = punctRe.ReplaceAllString(lv, " ")
	lv = strings.TrimSpace(spaceRe.ReplaceAllString(lv, " "))
	if len(lv) < 3 || lv == variant {
		return "", false
	}
	return lv, true
}

// pool keeps candidates in first-seen order with code-level dedup.
type pool struct {
	order  []string
	byCode map[string]terminology.Candidate
}

func newPool() *pool {
	return &pool{byCode: make(map[string]terminology.Candidate)}
}

func (p *pool) add(c terminology.Candidate) {
	if c.Code == "" {
		return
	}
	if _, ok := p.byCode[c.Code]; ok {
		return
	}
	p.byCode[c.Code] = c
	p.order = append(p.order, c.Code)
}

func (p *pool) len() int { return len(p.order) }

func (p *pool) candidates() []terminology.Candidate {
	out := make([]terminology.Candidate, 0, len(p.order))
	for _, code := range p.order {
		out = append(out, p.byCode[code])
	}
	return out
}
