package terminology

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TableService serves Expand and Lookup from an in-memory copy of the
// LOINC core table. It lets the mapper run offline against a local
// LoincTableCore.csv instead of the network service.
type TableService struct {
	concepts []*TableConcept
	byCode   map[string]*ConceptDetail
	tokens   []map[string]bool
}

// NewTableService builds a TableService over loaded concepts.
func NewTableService(concepts []*TableConcept) *TableService {
	s := &TableService{
		concepts: concepts,
		byCode:   make(map[string]*ConceptDetail, len(concepts)),
		tokens:   make([]map[string]bool, len(concepts)),
	}
	for i, c := range concepts {
		s.byCode[c.Detail.Code] = c.Detail
		s.tokens[i] = tokenSet(c.LongName + " " + c.Component + " " + c.ShortName)
	}
	return s
}

// NewTableServiceFromFile loads LoincTableCore.csv from path and
// builds a TableService over it.
func NewTableServiceFromFile(path string) (*TableService, error) {
	concepts, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return NewTableService(concepts), nil
}

// Len returns the number of loaded concepts.
func (s *TableService) Len() int {
	return len(s.concepts)
}

var tableTokenRe = regexp.MustCompile(`[a-z0-9]+`)

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tableTokenRe.FindAllString(strings.ToLower(text), -1) {
		set[tok] = true
	}
	return set
}

// Expand matches filter against the long common name, component, and
// short name columns. Every filter token must match some name token by
// prefix, mirroring the word-prefix semantics of the online filter
// search. Results keep table order.
func (s *TableService) Expand(ctx context.Context, filter string, count int) ([]Candidate, error) {
	want := tableTokenRe.FindAllString(strings.ToLower(filter), -1)
	if len(want) == 0 {
		return nil, nil
	}
	var out []Candidate
	for i, c := range s.concepts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if matchesTokens(s.tokens[i], want) {
			out = append(out, Candidate{Code: c.Detail.Code, Display: c.Detail.Display})
			if count > 0 && len(out) >= count {
				break
			}
		}
	}
	return out, nil
}

func matchesTokens(have map[string]bool, want []string) bool {
	for _, w := range want {
		if have[w] {
			continue
		}
		found := false
		for tok := range have {
			if strings.HasPrefix(tok, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Lookup returns the detail for code, or an error when the code is not
// in the table.
func (s *TableService) Lookup(_ context.Context, code string) (*ConceptDetail, error) {
	d, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("code %s not found in table", code)
	}
	return d, nil
}

// Probe always succeeds; a loaded table needs no credentials.
func (s *TableService) Probe(_ context.Context) error {
	return nil
}

// Verify interface compliance
var _ Service = (*TableService)(nil)
var _ Prober = (*TableService)(nil)
