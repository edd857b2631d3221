// =============================================================================
// shipcheck - Segment Command
// =============================================================================
//
// The segment command splits a flat multi-invoice export into one tab per
// invoice. Boundary marker rows ("Invoice: ..."), preamble noise rows, and
// the shared header row are recognized via the configured patterns.
//
// COMMAND USAGE:
//   shipcheck segment [flags]
//
// FLAGS:
//   --input    : Path to the flat export workbook (overrides the config)
//   --output   : Path for the segmented workbook (overrides the config name)
//   --dry-run  : Detect groups and print the summary without writing output
//
// Every sheet of the input is segmented; the detected groups from all
// sheets land in one output workbook. Warnings (malformed boundaries,
// discarded preamble data, sanitized tab names) accumulate into a findings
// report written next to the segmented output.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/importdesk/shipcheck/internal/logging"
	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/segment"
	"github.com/importdesk/shipcheck/internal/xlsxio"
	"github.com/importdesk/shipcheck/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// segmentInput overrides the configured input path.
var segmentInput string

// segmentOutput overrides the configured output file name.
var segmentOutput string

// segmentDryRun suppresses output writing.
var segmentDryRun bool

// =============================================================================
// SEGMENT COMMAND DEFINITION
// =============================================================================

// segmentCmd represents the 'segment' command.
var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Split a flat multi-invoice export into one tab per invoice",
	Long: `The segment command scans the rows of a flat export in order. Rows
matching a configured skip pattern (job numbers, BL references, other
framing content) are discarded. A row matching the boundary pattern opens a
new invoice group, whose identifier is extracted via the identifier
pattern; the rows that follow belong to that group until the next boundary
or the end of the sheet.

Malformed input never aborts the run: a marker row without an extractable
identifier opens a group under a placeholder name with a warning, and data
rows ahead of the first marker are discarded with a warning (or attributed
to an implicit preamble group, depending on preamble_policy).

The output workbook carries one tab per detected invoice, each with the
shared header row of the export.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegment()
	},
}

// init registers the segment command and its flags.
func init() {
	rootCmd.AddCommand(segmentCmd)

	segmentCmd.Flags().StringVar(
		&segmentInput,
		"input",
		"",
		"Path to the flat export workbook (overrides the config)",
	)

	segmentCmd.Flags().StringVar(
		&segmentOutput,
		"output",
		"",
		"Path for the segmented workbook (overrides the configured name)",
	)

	segmentCmd.Flags().BoolVar(
		&segmentDryRun,
		"dry-run",
		false,
		"Detect groups and print the summary without writing output",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runSegment orchestrates the segmentation pipeline.
func runSegment() error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	input := cfg.Segment.Input
	if segmentInput != "" {
		input = segmentInput
	}
	if input == "" {
		return fmt.Errorf("no input workbook: set segment.input in the config or pass --input")
	}

	opts, err := cfg.Segment.Options()
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.Output.Dir, cfg.Output.ArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: LOAD AND SEGMENT
	// =========================================================================

	rep := report.New()
	log.Info("Run %s: segmenting %s", rep.RunID, input)

	sheets, err := xlsxio.LoadRaw(input)
	if err != nil {
		return err
	}

	engine := segment.New(log)
	var groups []segment.Group
	for _, sheet := range sheets {
		log.Info("Segmenting sheet %q (%d rows)", sheet.Name, len(sheet.Rows))
		groups = append(groups, engine.Segment(sheet.Name, sheet.Rows, opts, rep)...)
	}
	groups = dedupeSheetNames(groups, log)

	if cfg.Segment.Transform.Enabled() {
		transform, err := cfg.Segment.Transform.Transform()
		if err != nil {
			return err
		}
		log.Info("Applying description transform to %d group(s)", len(groups))
		for i := range groups {
			groups[i] = transform.Apply(groups[i])
		}
	}

	// =========================================================================
	// STEP 3: SUMMARY AND OUTPUT
	// =========================================================================

	total := 0
	for _, g := range groups {
		total += len(g.Rows)
	}
	fmt.Println("\n=== Segmentation Complete ===")
	fmt.Printf("Invoice groups:  %d\n", len(groups))
	fmt.Printf("Data rows:       %d\n", total)
	fmt.Printf("Warnings:        %d\n", len(rep.Findings()))
	for _, g := range groups {
		fmt.Printf("  %-31s %d row(s)\n", g.SheetName, len(g.Rows))
	}

	if segmentDryRun {
		fmt.Println("Dry run: output not written.")
		return nil
	}
	if len(groups) == 0 {
		return fmt.Errorf("no invoice groups detected in %s", input)
	}

	outPath := segmentOutput
	if outPath == "" {
		outPath = fm.OutputPath(cfg.Output.SegmentFile, map[string]string{
			"stem": utils.Stem(input),
		})
	}
	if err := xlsxio.WriteGroups(outPath, groups, cfg.Segment.KeepColumns); err != nil {
		return err
	}
	fmt.Printf("Segmented workbook written to %s\n", outPath)

	if len(rep.Findings()) > 0 {
		reportPath := fm.OutputPath(cfg.Output.ReportFile, map[string]string{
			"stem": utils.Stem(input),
		})
		if err := xlsxio.WriteReport(reportPath, rep); err != nil {
			return err
		}
		fmt.Printf("Warnings report written to %s\n", reportPath)

		logPath, err := fm.WriteFindingsLog("shipcheck - Segmentation Warnings", findingLines(rep))
		if err != nil {
			return err
		}
		if logPath != "" {
			fmt.Printf("Warnings log written to %s\n", logPath)
		}
	}

	if cfg.Output.ArchiveDir != "" {
		archived, err := fm.ArchiveInput(input)
		if err != nil {
			return fmt.Errorf("failed to archive input: %w", err)
		}
		log.Info("Input archived to %s", archived)
	}

	return nil
}

// dedupeSheetNames suffixes colliding tab names. Two invoices can sanitize
// to the same 31-character name; the writer must never silently merge them.
func dedupeSheetNames(groups []segment.Group, log logging.Logger) []segment.Group {
	used := make(map[string]int, len(groups))
	for i := range groups {
		name := groups[i].SheetName
		n := used[name]
		used[name] = n + 1
		if n == 0 {
			continue
		}
		suffix := fmt.Sprintf("_%d", n+1)
		name = segment.TruncateSheetName(name, 31-len(suffix))
		log.Warn("Duplicate tab name %q, renaming to %q", groups[i].SheetName, name+suffix)
		groups[i].SheetName = name + suffix
	}
	return groups
}
