// =============================================================================
// Forest Inventory Processor - Validate Command
// =============================================================================
//
// The 'validate' command checks the configuration and, optionally, a single
// spreadsheet's columns, without running the pipeline or writing anything.
//
// COMMAND USAGE:
//   florytica validate                    # Validate the configuration
//   florytica validate --file dados.xlsx  # Also resolve a file's headers
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/florytica/forest-inventory/internal/config"
	"github.com/florytica/forest-inventory/internal/schema"
	"github.com/florytica/forest-inventory/internal/sheet"
)

// validateFile is the optional spreadsheet to check.
var validateFile string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and optionally a spreadsheet's columns",
	Long: `The validate command loads the configuration, prints the effective survey
parameters, and, when --file is given, reads that spreadsheet's header row
and reports how each column resolves against the canonical schema. Nothing
is processed or written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validateFile,
		"file",
		"",
		"Spreadsheet whose columns should be resolved",
	)
}

// runValidate prints the effective configuration and resolves the optional
// input file's headers.
func runValidate() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Configuration OK")
	fmt.Printf("  Input dir:        %s\n", cfg.InputDir)
	fmt.Printf("  Output dir:       %s\n", cfg.OutputDir)
	fmt.Printf("  Reference level:  %s\n", cfg.Survey.ReferenceLevel)
	fmt.Printf("  Regeneration:     %v\n", cfg.Survey.RegenerationLevels)

	fmt.Println("  Plot areas (m²):")
	levels := make([]string, 0, len(cfg.Survey.PlotAreas))
	for level := range cfg.Survey.PlotAreas {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Printf("    %-4s %v\n", level, cfg.Survey.PlotAreas[level])
	}

	if validateFile == "" {
		return nil
	}

	table, err := sheet.Read(validateFile, cfg.Survey.DataSheetNames)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", validateFile, err)
	}

	fmt.Printf("\nFile: %s", validateFile)
	if table.SheetName != "" {
		fmt.Printf(" (sheet %q)", table.SheetName)
	}
	fmt.Printf("\n  Rows: %d\n", len(table.Rows))

	columns, err := schema.NewResolver(cfg.Survey.ColumnAliases).Resolve(table.Headers)
	if err != nil {
		return err
	}

	fmt.Println("  Resolved columns:")
	fields := make([]string, 0, len(columns))
	for field := range columns {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Printf("    %-18s <- %q\n", field, columns[schema.Field(field)])
	}

	return nil
}
