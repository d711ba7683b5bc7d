// Package cmd implements the loinc-mapper command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	lm "github.com/gofhir/loinc-mapper"
	"github.com/gofhir/loinc-mapper/engine"
	"github.com/gofhir/loinc-mapper/fhir"
	"github.com/gofhir/loinc-mapper/internal/logger"
	"github.com/gofhir/loinc-mapper/report"
	"github.com/gofhir/loinc-mapper/term"
	"github.com/gofhir/loinc-mapper/terminology"
)

var (
	flagOut      string
	flagCount    int
	flagTopK     int
	flagSleep    time.Duration
	flagCreds    string
	flagSaveAll  bool
	flagAllOut   string
	flagTable    string
	flagStore    string
	flagBaseURL  string
	flagTimeout  time.Duration
	flagParallel int
	flagLexicon  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "loinc-mapper [terms...]",
	Short: "Map clinical search terms to ranked LOINC codes",
	Long: `loinc-mapper looks up LOINC codes, labels, and definitions for
clinical search terms via the official LOINC FHIR Terminology Service
(https://fhir.loinc.org), or offline against a local LoincTableCore.csv.

Terms are normalized, expanded into query variants, searched, enriched
with full concept details, scored, and ranked. Without arguments a
default obstetric ultrasound term list is used.

Credentials (a free LOINC account) are read from --creds, then from
LOINC_USER/LOINC_PASS, then from ./loinc_creds.txt (username on the
first line, password on the second).`,
	Args: cobra.ArbitraryArgs,
	RunE: runLookup,

	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagCreds, "creds", "", "path to credentials file (username/password on separate lines)")
	pf.StringVar(&flagBaseURL, "base-url", fhir.DefaultBaseURL, "terminology service base URL")
	pf.DurationVar(&flagTimeout, "timeout", fhir.DefaultTimeout, "HTTP request timeout")
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error, none)")

	f := rootCmd.Flags()
	f.StringVar(&flagOut, "out", "loinc_lookup_results.csv", "output CSV for top-k results")
	f.IntVar(&flagCount, "count", lm.DefaultCountPerVariant, "server-side candidate count per query variant")
	f.IntVar(&flagTopK, "top-k", lm.DefaultTopK, "number of ranked matches to keep per term")
	f.DurationVar(&flagSleep, "sleep", lm.DefaultPacing, "delay between lookup calls")
	f.BoolVar(&flagSaveAll, "save-all-candidates", false, "also write every enriched candidate with diagnostics")
	f.StringVar(&flagAllOut, "all-out", "loinc_lookup_all_candidates.csv", "output CSV for all candidates")
	f.StringVar(&flagTable, "table", "", "resolve offline against a LoincTableCore.csv at this path")
	f.StringVar(&flagStore, "store", "", "cache raw service responses in a bbolt file at this path")
	f.IntVar(&flagParallel, "parallel", 1, "number of terms resolved concurrently")
	f.StringVar(&flagLexicon, "lexicon", "", "YAML lexicon overriding the built-in variant tables")
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := logger.Default()
	log.SetLevel(logger.ParseLevel(flagLogLevel))

	svc, cleanup, err := buildService(log)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := lm.DefaultOptions()
	opts.TopK = flagTopK
	opts.CountPerVariant = flagCount
	opts.Pacing = flagSleep
	opts.Parallelism = flagParallel
	opts.Audit = flagSaveAll
	opts.Logger = log
	if flagLexicon != "" {
		lx, err := term.LoadLexicon(flagLexicon)
		if err != nil {
			return fmt.Errorf("loading lexicon: %w", err)
		}
		opts.Lexicon = lx
	}
	// Offline lookups are local; no politeness delay needed.
	if flagTable != "" {
		opts.Pacing = 0
	}

	terms := args
	if len(terms) == 0 {
		terms = term.DefaultTerms
		log.Info("no terms given, using the default obstetric ultrasound list (%d terms)", len(terms))
	}

	resolver := engine.New(svc, opts)
	rep, err := resolver.ResolveAll(cmd.Context(), terms)
	if err != nil {
		if fhir.IsAuthError(err) {
			fmt.Fprintln(os.Stderr, "Authentication failed. Verify your LOINC username and password (free account at https://loinc.org).")
		}
		return err
	}

	report.PrintPreview(os.Stdout, rep)

	rows := rep.Rows()
	if len(rows) == 0 {
		fmt.Println("No results to save.")
		return nil
	}
	if err := report.WriteResultsFile(flagOut, rows); err != nil {
		return err
	}
	fmt.Printf("Saved top-%d results to: %s\n", flagTopK, flagOut)

	if flagSaveAll {
		audit := rep.AuditRows()
		if len(audit) == 0 {
			fmt.Println("No 'all candidates' to save (none enriched).")
		} else {
			if err := report.WriteAuditFile(flagAllOut, audit); err != nil {
				return err
			}
			fmt.Printf("Saved ALL enriched candidates to: %s\n", flagAllOut)
		}
	}
	return nil
}

// buildService assembles the terminology service: a local table when
// --table is set, otherwise the FHIR client with credentials, optional
// response store, and an in-memory result cache.
func buildService(log *logger.Logger) (terminology.Service, func(), error) {
	noop := func() {}

	if flagTable != "" {
		svc, err := terminology.NewTableServiceFromFile(flagTable)
		if err != nil {
			return nil, noop, err
		}
		log.Info("loaded %d concepts from %s", svc.Len(), flagTable)
		return svc, noop, nil
	}

	creds, err := fhir.ResolveCredentials(flagCreds)
	if err != nil {
		if errors.Is(err, fhir.ErrNoCredentials) {
			return nil, noop, fmt.Errorf("%w: pass --creds, set %s/%s, or create ./%s",
				err, fhir.EnvUser, fhir.EnvPass, fhir.DefaultCredsFile)
		}
		return nil, noop, err
	}

	clientOpts := []fhir.ClientOption{
		fhir.WithBaseURL(flagBaseURL),
		fhir.WithTimeout(flagTimeout),
		fhir.WithLogger(log),
	}
	cleanup := noop
	if flagStore != "" {
		store, err := fhir.OpenBoltStore(flagStore)
		if err != nil {
			return nil, noop, err
		}
		clientOpts = append(clientOpts, fhir.WithResponseStore(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn("closing response store: %v", err)
			}
		}
	}

	client := fhir.NewClient(creds, clientOpts...)
	return terminology.NewCachedService(client, terminology.DefaultCacheConfig()), cleanup, nil
}
