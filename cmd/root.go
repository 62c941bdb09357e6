// =============================================================================
// Forest Inventory Processor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// (process, validate, version) attach to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (florytica)
//   ├── processCmd  (florytica process)
//   ├── validateCmd (florytica validate)
//   └── versionCmd  (florytica version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file.
// Overridden with the --config flag.
var cfgFile string

// verbose enables per-file progress detail.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "florytica",
	Short: "Forest Inventory Processor - derive mensuration metrics from field spreadsheets",
	Long: `Forest Inventory Processor is a batch CLI tool that ingests forestry
field-inventory spreadsheets (tree measurements grouped by sampling level)
and derives standard forest-mensuration metrics:

  - DAP (cm)          = CAP / π
  - g (m²)            = π x (DAP/200)²
  - Volume (m³)       = 1.3332 x (DAP/100)^2.0836 x height^0.732
  - Expansion factor, per-hectare indicators, property-wide totals
  - Sturges diameter and height classes for the reference stratum
  - Standardized volume deviation score

Results are written to an output workbook with the augmented per-row table
and the per-level indicator summary.

Example Usage:
  florytica process                      # Process every spreadsheet in the input directory
  florytica process --area 12.5         # Also estimate property-wide totals for 12.5 ha
  florytica validate --file dados.xlsx  # Check a spreadsheet's columns without processing`,

	Run: func(cmd *cobra.Command, args []string) {
		// Without a subcommand there is nothing to do but explain ourselves.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output",
	)
}
