package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gofhir/loinc-mapper/fhir"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Verify LOINC credentials against the terminology service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		creds, err := fhir.ResolveCredentials(flagCreds)
		if err != nil {
			return err
		}
		client := fhir.NewClient(creds,
			fhir.WithBaseURL(flagBaseURL),
			fhir.WithTimeout(flagTimeout),
		)
		if err := client.Probe(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("OK: authenticated against %s as %s\n", flagBaseURL, creds.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
