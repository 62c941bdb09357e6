// =============================================================================
// Forest Inventory Processor - Main Entry Point
// =============================================================================
//
// Batch CLI that derives standard forest-mensuration metrics from field
// inventory spreadsheets.
//
// USAGE:
//   florytica process    - Process every spreadsheet in the input directory
//   florytica validate   - Validate configuration and input columns
//   florytica version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : core business logic (schema, sheet, inventory, report)
//   - pkg/        : shared utilities
//
// =============================================================================

package main

import (
	"github.com/florytica/forest-inventory/cmd"
)

// main delegates to the cmd package, which initializes and runs the CLI.
func main() {
	cmd.Execute()
}
