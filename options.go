package loincmapper

import (
	"time"

	"github.com/gofhir/loinc-mapper/internal/logger"
	"github.com/gofhir/loinc-mapper/term"
)

const (
	// DefaultTopK is the number of best matches reported per term.
	DefaultTopK = 5

	// DefaultCountPerVariant is the server-side candidate count
	// requested per query variant.
	DefaultCountPerVariant = 50

	// DefaultPerVariantTrim caps how many prefiltered candidates one
	// variant may contribute.
	DefaultPerVariantTrim = 200

	// DefaultGlobalCap bounds the total candidate pool per term.
	DefaultGlobalCap = 1200

	// DefaultPacing is the politeness delay between lookup calls.
	DefaultPacing = 200 * time.Millisecond
)

// Options configures term resolution.
type Options struct {
	// TopK is the number of ranked matches to report per term.
	TopK int

	// CountPerVariant is the candidate count requested from the
	// service per query variant.
	CountPerVariant int

	// PerVariantTrim caps one variant's contribution to the pool.
	// Zero derives the cap from CountPerVariant and TopK.
	PerVariantTrim int

	// GlobalCap stops gathering once the pool reaches this size.
	GlobalCap int

	// Pacing is the delay inserted before each lookup call.
	Pacing time.Duration

	// Parallelism is the number of terms resolved concurrently.
	// Values below 2 resolve sequentially.
	Parallelism int

	// Audit collects every enriched candidate with both stage scores,
	// not just the top picks.
	Audit bool

	// Lexicon supplies abbreviations, variant templates, and hints.
	Lexicon *term.Lexicon

	// Policy gates derived and percentile concepts per raw term.
	Policy term.Policy

	// Logger receives pipeline diagnostics.
	Logger *logger.Logger
}

// Option configures Options.
type Option func(*Options)

// WithTopK sets the number of ranked matches per term.
func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

// WithCountPerVariant sets the per-variant candidate count.
func WithCountPerVariant(n int) Option {
	return func(o *Options) {
		o.CountPerVariant = n
	}
}

// WithGlobalCap sets the total candidate pool bound.
func WithGlobalCap(n int) Option {
	return func(o *Options) {
		o.GlobalCap = n
	}
}

// WithPacing sets the delay between lookup calls.
func WithPacing(d time.Duration) Option {
	return func(o *Options) {
		o.Pacing = d
	}
}

// WithParallelism sets how many terms resolve concurrently.
func WithParallelism(n int) Option {
	return func(o *Options) {
		o.Parallelism = n
	}
}

// WithAudit enables collection of all enriched candidates.
func WithAudit(enabled bool) Option {
	return func(o *Options) {
		o.Audit = enabled
	}
}

// WithLexicon sets the variant lexicon.
func WithLexicon(lx *term.Lexicon) Option {
	return func(o *Options) {
		o.Lexicon = lx
	}
}

// WithPolicy sets the derived/percentile gating policy.
func WithPolicy(p term.Policy) Option {
	return func(o *Options) {
		o.Policy = p
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// DefaultOptions returns Options with production defaults and the
// built-in obstetric lexicon.
func DefaultOptions() Options {
	return Options{
		TopK:            DefaultTopK,
		CountPerVariant: DefaultCountPerVariant,
		GlobalCap:       DefaultGlobalCap,
		Pacing:          DefaultPacing,
		Parallelism:     1,
		Lexicon:         term.DefaultLexicon(),
		Policy:          term.DefaultPolicy(),
		Logger:          logger.Default(),
	}
}

// NewOptions builds Options from defaults plus overrides.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EffectivePerVariantTrim resolves the per-variant cap. When unset it
// scales with the requested count and TopK, floored at the default.
func (o Options) EffectivePerVariantTrim() int {
	if o.PerVariantTrim > 0 {
		return o.PerVariantTrim
	}
	trim := o.TopK * 8
	if trim > o.CountPerVariant {
		trim = o.CountPerVariant
	}
	if trim < DefaultPerVariantTrim {
		trim = DefaultPerVariantTrim
	}
	return trim
}
