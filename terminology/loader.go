package terminology

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names consulted in LoincTableCore.csv. The loader is
// header-indexed, so column order in the file does not matter.
const (
	colCode       = "LOINC_NUM"
	colComponent  = "COMPONENT"
	colProperty   = "PROPERTY"
	colTimeAspect = "TIME_ASPCT"
	colSystem     = "SYSTEM"
	colScale      = "SCALE_TYP"
	colMethod     = "METHOD_TYP"
	colClass      = "CLASS"
	colClassType  = "CLASSTYPE"
	colLongName   = "LONG_COMMON_NAME"
	colShortName  = "SHORTNAME"
	colStatus     = "STATUS"
)

// TableConcept is one row of the LOINC core table, with the concept
// detail plus the name columns used for offline search.
type TableConcept struct {
	Detail    *ConceptDetail
	Component string
	LongName  string
	ShortName string
}

// LoadTable reads concepts from a LoincTableCore.csv file.
func LoadTable(path string) ([]*TableConcept, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open LOINC table %s: %w", path, err)
	}
	defer f.Close()

	concepts, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read LOINC table %s: %w", path, err)
	}
	return concepts, nil
}

// ReadTable parses LOINC core table CSV from r.
func ReadTable(r io.Reader) ([]*TableConcept, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := idx[colCode]; !ok {
		return nil, fmt.Errorf("missing required column %s", colCode)
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var concepts []*TableConcept
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		code := field(row, colCode)
		if code == "" {
			continue
		}

		props := map[string]string{
			PropProperty:   field(row, colProperty),
			PropTimeAspect: field(row, colTimeAspect),
			PropSystem:     field(row, colSystem),
			PropScale:      field(row, colScale),
			PropMethod:     field(row, colMethod),
			PropClass:      field(row, colClass),
		}
		if ct := field(row, colClassType); ct != "" {
			props["CLASSTYPE"] = ct
		}
		// The core table encodes super-system with a caret, e.g.
		// "Head^Fetus".
		if system := props[PropSystem]; strings.Contains(system, "^") {
			parts := strings.SplitN(system, "^", 2)
			props[PropSystemCore] = parts[0]
			props[PropSuperSystem] = parts[1]
		}

		longName := field(row, colLongName)
		display := longName
		if display == "" {
			display = field(row, colComponent)
		}
		detail := NewConceptDetail(code, display, "", field(row, colStatus), props)

		concepts = append(concepts, &TableConcept{
			Detail:    detail,
			Component: field(row, colComponent),
			LongName:  longName,
			ShortName: field(row, colShortName),
		})
	}
	return concepts, nil
}
