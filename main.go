// =============================================================================
// shipcheck - Main Entry Point
// =============================================================================
//
// shipcheck validates shipment paperwork: it reconciles an import checklist
// workbook against shipping list and duty rate references, and it splits
// flat multi-invoice exports into one tab per invoice.
//
// USAGE:
//   shipcheck reconcile     - Validate the primary workbook against references
//   shipcheck segment       - Split a flat export into per-invoice tabs
//   shipcheck validate      - Check the configuration without processing
//   shipcheck version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core engines and I/O (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/importdesk/shipcheck/cmd"
)

// main delegates to the cmd package, which initializes and runs the CLI.
func main() {
	cmd.Execute()
}
