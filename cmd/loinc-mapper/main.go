// loinc-mapper resolves clinical search terms to ranked LOINC codes
// using the official LOINC FHIR terminology service or a local copy of
// the LOINC core table.
package main

import (
	"os"

	"github.com/gofhir/loinc-mapper/cmd/loinc-mapper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
