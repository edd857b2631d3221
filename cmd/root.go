// =============================================================================
// shipcheck - Root Command
// =============================================================================
//
// The root command carries the global flags and anchors the subcommands:
//
//   shipcheck
//   ├── reconcile   (validate primary workbook against references)
//   ├── segment     (split flat export into per-invoice tabs)
//   ├── validate    (check configuration without processing)
//   └── version
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/importdesk/shipcheck/internal/config"
	"github.com/importdesk/shipcheck/internal/logging"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile is the path to the run configuration file, set via --config.
var cfgFile string

// verbose enables debug logging, set via --verbose.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "shipcheck",
	Short: "Reconcile shipment workbooks and segment multi-invoice exports",
	Long: `shipcheck validates shipment paperwork before it goes to customs.

It solves two recurring problems with spreadsheet-based shipping documents:

  reconcile  - verify that each row of an import checklist matches its
               uniquely keyed counterpart row in the shipping list and duty
               rate workbooks, and report every mismatch, missing or
               ambiguous counterpart precisely
  segment    - split a flat export that concatenates several invoices into
               one sheet (with "Invoice:" marker rows as boundaries) into
               one named tab per invoice

Both commands read one YAML configuration describing the mapping rules and
patterns, always run to completion, and collect every problem they find into
a findings report workbook.`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the run configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration file given via --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger from the --verbose flag and the
// configured log level.
func newLogger(cfg *config.Config) *logging.StdLogger {
	return logging.New(verbose || cfg.LogLevel == "debug")
}
