package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	lm "github.com/gofhir/loinc-mapper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the loinc-mapper version",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("loinc-mapper", lm.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
