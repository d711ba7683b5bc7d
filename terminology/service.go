package terminology

import (
	"context"
	"strings"
)

// Candidate is a code+display pair returned by Expand.
type Candidate struct {
	Code    string
	Display string
}

// ConceptDetail is the flattened result of a Lookup call. The LOINC
// properties the engine scores on are promoted to named fields; everything
// else the service returned is preserved in Extra.
type ConceptDetail struct {
	Code       string
	Display    string
	Definition string
	Status     string

	// Named LOINC properties consumed by classification and scoring.
	Property     string // PROPERTY (e.g. Len, Circ, Mass, Rate, Rto)
	Scale        string // SCALE_TYP (Qn, Ord, Nom, Nar, ...)
	Class        string // CLASS (e.g. OB.US)
	System       string // SYSTEM (specimen/system axis)
	TimeAspect   string // TIME_ASPCT
	Method       string // METHOD_TYP
	ExampleUnits string // EXAMPLE_UCUM_UNITS
	SystemCore   string // system-core
	SuperSystem  string // super-system

	// Extra holds any remaining properties keyed as returned by the service.
	Extra map[string]string
}

// Property keys promoted to named ConceptDetail fields.
const (
	PropProperty     = "PROPERTY"
	PropScale        = "SCALE_TYP"
	PropClass        = "CLASS"
	PropSystem       = "SYSTEM"
	PropTimeAspect   = "TIME_ASPCT"
	PropMethod       = "METHOD_TYP"
	PropExampleUnits = "EXAMPLE_UCUM_UNITS"
	PropSystemCore   = "system-core"
	PropSuperSystem  = "super-system"
)

// NewConceptDetail builds a ConceptDetail from a raw property map,
// promoting the known keys and keeping the remainder in Extra.
func NewConceptDetail(code, display, definition, status string, props map[string]string) *ConceptDetail {
	d := &ConceptDetail{
		Code:       code,
		Display:    display,
		Definition: definition,
		Status:     status,
	}
	for k, v := range props {
		switch k {
		case PropProperty:
			d.Property = v
		case PropScale:
			d.Scale = v
		case PropClass:
			d.Class = v
		case PropSystem:
			d.System = v
		case PropTimeAspect:
			d.TimeAspect = v
		case PropMethod:
			d.Method = v
		case PropExampleUnits:
			d.ExampleUnits = v
		case PropSystemCore:
			d.SystemCore = v
		case PropSuperSystem:
			d.SuperSystem = v
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]string)
			}
			d.Extra[k] = v
		}
	}
	return d
}

// IsQuantitative reports whether the concept's scale denotes a numeric
// observation.
func (d *ConceptDetail) IsQuantitative() bool {
	return strings.EqualFold(strings.TrimSpace(d.Scale), "Qn")
}

// --- Small interfaces (one operation each) ---

// Expander searches the terminology for candidates matching a text filter.
// An empty result is "no matches for this filter", not an error.
type Expander interface {
	Expand(ctx context.Context, filter string, count int) ([]Candidate, error)
}

// Lookuper retrieves the full detail record for one code.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (*ConceptDetail, error)
}

// Prober performs a cheap authenticated call so that credential problems
// surface before any term is processed.
type Prober interface {
	Probe(ctx context.Context) error
}

// Service combines the two operations the resolution engine needs.
type Service interface {
	Expander
	Lookuper
}
