// =============================================================================
// shipcheck - Validate Command
// =============================================================================
//
// The validate command loads the run configuration, applies defaults,
// compiles every pattern, and prints what a run would do, without opening
// any workbook. Useful after editing mapping rules.
//
// COMMAND USAGE:
//   shipcheck validate
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration without processing anything",
	Long: `The validate command loads the configuration file, applies defaults,
validates every mapping rule, and compiles every segmentation pattern.
It prints a summary of the configured run and exits. No workbook is
opened and nothing is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

// init registers the validate command.
func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate loads and summarizes the configuration.
func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration %s is valid.\n\n", cfgFile)

	fmt.Println("Reconciliation:")
	if cfg.Reconcile.Primary != "" {
		fmt.Printf("  primary: %s\n", cfg.Reconcile.Primary)
	}
	for _, ref := range cfg.Reconcile.References {
		fmt.Printf("  reference %q:\n", ref.Name)
		if ref.Path != "" {
			fmt.Printf("    path:            %s\n", ref.Path)
		}
		fmt.Printf("    key:             %v -> %v (%s)\n",
			ref.PrimaryKeyColumns, ref.ReferenceKeyColumns, ref.KeyNormalization)
		fmt.Printf("    field pairs:     %d\n", len(ref.FieldPairs))
		if ref.NumericTolerance > 0 {
			fmt.Printf("    tolerance:       %g\n", ref.NumericTolerance)
		}
	}

	fmt.Println("Segmentation:")
	fmt.Printf("  boundary pattern:   %s\n", cfg.Segment.BoundaryPattern)
	fmt.Printf("  identifier pattern: %s\n", cfg.Segment.IdentifierPattern)
	fmt.Printf("  skip patterns:      %d\n", len(cfg.Segment.SkipPatterns))
	fmt.Printf("  header tokens:      %v (min %d)\n",
		cfg.Segment.HeaderTokens, cfg.Segment.MinHeaderMatches)
	fmt.Printf("  preamble policy:    %s\n", cfg.Segment.PreamblePolicy)

	return nil
}
