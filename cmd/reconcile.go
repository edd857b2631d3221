// =============================================================================
// shipcheck - Reconcile Command
// =============================================================================
//
// The reconcile command validates the primary workbook against every
// configured reference workbook and writes the findings report.
//
// COMMAND USAGE:
//   shipcheck reconcile [flags]
//
// FLAGS:
//   --primary   : Path to the primary workbook (overrides the config)
//   --ref       : Override a reference path as name=path (repeatable)
//   --dry-run   : Run the engines and print the summary without writing
//                 the report workbook
//
// PIPELINE:
//   1. Load configuration
//   2. Load the primary workbook and every reference workbook
//   3. Reconcile sheet by sheet, row by row, accumulating findings
//   4. Print the summary and write the findings report workbook
//
// The run always completes and yields a report, however many findings it
// accumulates. The only fatal condition is a workbook that cannot be loaded.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/importdesk/shipcheck/internal/reconcile"
	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/xlsxio"
	"github.com/importdesk/shipcheck/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// primaryPath overrides the configured primary workbook path.
var primaryPath string

// refOverrides override configured reference paths, as name=path.
var refOverrides []string

// reconcileDryRun suppresses report writing.
var reconcileDryRun bool

// =============================================================================
// RECONCILE COMMAND DEFINITION
// =============================================================================

// reconcileCmd represents the 'reconcile' command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Validate the primary workbook against the reference workbooks",
	Long: `The reconcile command checks every row of every sheet of the primary
workbook against its counterpart row in each configured reference workbook.

Counterparts are located through the key columns declared per reference
(for example the cleaned P/N), and the declared field pairs are compared
under deterministic normalization. Every problem becomes one finding:

  mismatch               a compared field differs between the documents
  missing_counterpart    the key exists nowhere in the reference sheet
  ambiguous_counterpart  the key matches more than one reference row
  unkeyed_row            the primary row has an empty key
  missing_sheet          a primary sheet has no same-named reference sheet

Findings never stop the run. The report workbook carries a summary sheet
and one sheet per finding kind.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

// init registers the reconcile command and its flags.
func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(
		&primaryPath,
		"primary",
		"",
		"Path to the primary workbook (overrides the config)",
	)

	reconcileCmd.Flags().StringArrayVar(
		&refOverrides,
		"ref",
		nil,
		"Override a reference workbook path as name=path (repeatable)",
	)

	reconcileCmd.Flags().BoolVar(
		&reconcileDryRun,
		"dry-run",
		false,
		"Run reconciliation and print the summary without writing the report",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runReconcile orchestrates the reconciliation pipeline.
func runReconcile() error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	primary := cfg.Reconcile.Primary
	if primaryPath != "" {
		primary = primaryPath
	}
	if primary == "" {
		return fmt.Errorf("no primary workbook: set reconcile.primary in the config or pass --primary")
	}
	if len(cfg.Reconcile.References) == 0 {
		return fmt.Errorf("no references configured under reconcile.references")
	}

	overrides, err := parseRefOverrides(refOverrides)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.Output.Dir, cfg.Output.ArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	loadOpts := xlsxio.LoadOptions{
		HeaderTokens:     cfg.Load.HeaderTokens,
		MinHeaderMatches: cfg.Load.MinHeaderMatches,
		HeaderScanRows:   cfg.Load.HeaderScanRows,
		ColumnVariants:   cfg.Load.ColumnVariants,
	}

	// =========================================================================
	// STEP 2: LOAD WORKBOOKS
	// =========================================================================
	// Failure to load any workbook is the one fatal condition of the run.

	rep := report.New()
	log.Info("Run %s: loading primary workbook %s", rep.RunID, primary)

	primaryWb, err := xlsxio.LoadWorkbook(primary, loadOpts, log, rep)
	if err != nil {
		return err
	}

	refs := make([]reconcile.Reference, 0, len(cfg.Reconcile.References))
	for _, refCfg := range cfg.Reconcile.References {
		path := refCfg.Path
		if override, ok := overrides[refCfg.Name]; ok {
			path = override
		}
		if path == "" {
			return fmt.Errorf("reference %q has no path: set it in the config or pass --ref %s=path", refCfg.Name, refCfg.Name)
		}
		log.Info("Loading reference %q from %s", refCfg.Name, path)
		wb, err := xlsxio.LoadWorkbook(path, loadOpts, log, rep)
		if err != nil {
			return err
		}
		refs = append(refs, reconcile.Reference{Rule: refCfg.Rule(), Workbook: wb})
	}

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	engine := reconcile.New(log)
	engine.Reconcile(primaryWb, refs, rep)

	// =========================================================================
	// STEP 4: SUMMARY AND REPORT
	// =========================================================================

	printSummary(rep)

	if reconcileDryRun {
		fmt.Println("Dry run: report not written.")
		return nil
	}

	reportPath := fm.OutputPath(cfg.Output.ReportFile, map[string]string{
		"stem": utils.Stem(primary),
	})
	if err := xlsxio.WriteReport(reportPath, rep); err != nil {
		return err
	}
	fmt.Printf("Findings report written to %s\n", reportPath)

	logPath, err := fm.WriteFindingsLog("shipcheck - Reconciliation Findings", findingLines(rep))
	if err != nil {
		return err
	}
	if logPath != "" {
		fmt.Printf("Findings log written to %s\n", logPath)
	}

	return nil
}

// findingLines renders every finding as one log line.
func findingLines(rep *report.Report) []string {
	findings := rep.Findings()
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, f.String())
	}
	return lines
}

// parseRefOverrides parses repeated --ref name=path flags.
func parseRefOverrides(values []string) (map[string]string, error) {
	overrides := make(map[string]string, len(values))
	for _, v := range values {
		name, path, ok := strings.Cut(v, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --ref value %q, expected name=path", v)
		}
		overrides[name] = path
	}
	return overrides, nil
}

// printSummary prints the run summary to stdout.
func printSummary(rep *report.Report) {
	s := rep.Summarize()
	fmt.Println("\n=== Reconciliation Complete ===")
	fmt.Printf("Rows processed:  %d\n", s.RowsProcessed)
	fmt.Printf("Fields checked:  %d\n", s.FieldsChecked)
	fmt.Printf("Total findings:  %d\n", s.TotalFindings)
	for _, kind := range report.Kinds {
		if n := s.Counts[kind]; n > 0 {
			fmt.Printf("  %-28s %d\n", kind, n)
		}
	}
}
