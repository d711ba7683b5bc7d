package loincmapper

import (
	"testing"
	"time"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	if o.TopK != DefaultTopK {
		t.Errorf("TopK = %d, want %d", o.TopK, DefaultTopK)
	}
	if o.CountPerVariant != DefaultCountPerVariant {
		t.Errorf("CountPerVariant = %d, want %d", o.CountPerVariant, DefaultCountPerVariant)
	}
	if o.GlobalCap != DefaultGlobalCap {
		t.Errorf("GlobalCap = %d, want %d", o.GlobalCap, DefaultGlobalCap)
	}
	if o.Pacing != DefaultPacing {
		t.Errorf("Pacing = %s, want %s", o.Pacing, DefaultPacing)
	}
	if o.Parallelism != 1 {
		t.Errorf("Parallelism = %d, want 1", o.Parallelism)
	}
	if o.Lexicon == nil || o.Logger == nil {
		t.Error("lexicon and logger should default to the built-ins")
	}
}

func TestNewOptionsOverrides(t *testing.T) {
	o := NewOptions(
		WithTopK(3),
		WithCountPerVariant(25),
		WithGlobalCap(100),
		WithPacing(time.Second),
		WithParallelism(4),
		WithAudit(true),
	)
	if o.TopK != 3 || o.CountPerVariant != 25 || o.GlobalCap != 100 {
		t.Errorf("overrides not applied: %+v", o)
	}
	if o.Pacing != time.Second || o.Parallelism != 4 || !o.Audit {
		t.Errorf("overrides not applied: %+v", o)
	}
}

func TestEffectivePerVariantTrim(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{
			name: "defaults floor at 200",
			opts: Options{TopK: 5, CountPerVariant: 50},
			want: 200,
		},
		{
			name: "large top-k scales up",
			opts: Options{TopK: 40, CountPerVariant: 500},
			want: 320,
		},
		{
			name: "count bounds the scale",
			opts: Options{TopK: 40, CountPerVariant: 250},
			want: 250,
		},
		{
			name: "explicit trim wins",
			opts: Options{TopK: 5, CountPerVariant: 50, PerVariantTrim: 17},
			want: 17,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.EffectivePerVariantTrim(); got != tt.want {
				t.Errorf("EffectivePerVariantTrim() = %d, want %d", got, tt.want)
			}
		})
	}
}
