// =============================================================================
// Forest Inventory Processor - Process Command
// =============================================================================
//
// The 'process' command is the main entry point for batch processing. It
// discovers inventory spreadsheets in the input directory and runs the full
// pipeline for each one.
//
// COMMAND USAGE:
//   florytica process [flags]
//
// FLAGS:
//   --area     : Total property area in hectares (0 = per-hectare only)
//   --single   : Process only a single file (specify with --file)
//   --file     : Path to a specific file to process (used with --single)
//   --dry-run  : Compute everything but write no output files
//
// Files are processed concurrently (bounded by max_concurrency); each file's
// computation is single-threaded and fully isolated, so an error in one file
// never affects the others.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/florytica/forest-inventory/internal/config"
	"github.com/florytica/forest-inventory/internal/processor"
	"github.com/florytica/forest-inventory/pkg/utils"
)

// areaHa is the property area override; negative means "use the config".
var areaHa float64

// singleFile indicates whether to process only a single file.
var singleFile bool

// filePath is the file to process when --single is given.
var filePath string

// dryRun computes results without writing output files.
var dryRun bool

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process inventory spreadsheets and write result workbooks",
	Long: `The process command scans the input directory for inventory spreadsheets
(.xlsx or .csv), runs the mensuration pipeline on each one, and writes a
result workbook with the augmented per-row table ("Processado") and the
per-level indicator summary ("Indicadores_Nivel").

On successful processing:
  - The result workbook is placed in the output directory
  - The original spreadsheet is moved to the input archive
  - A run summary is written to the output directory

On error:
  - An error log is created in the output directory
  - The original spreadsheet stays in the input directory
  - Processing continues for the remaining files`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Float64Var(
		&areaHa,
		"area",
		-1,
		"Total property area in hectares (0 disables property-wide totals)",
	)
	processCmd.Flags().BoolVar(
		&singleFile,
		"single",
		false,
		"Process only a single file (use with --file)",
	)
	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process (used with --single)",
	)
	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Compute results without writing output files",
	)
}

// runProcess orchestrates a full batch run.
func runProcess() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Forest Inventory Processor ===")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if singleFile {
		if filePath == "" {
			return fmt.Errorf("--single requires --file")
		}
		if !utils.FileExists(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = fm.DiscoverInputFiles(".xlsx", ".xlsm", ".csv")
		if err != nil {
			return err
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No inventory spreadsheets found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// One goroutine per file, bounded by max_concurrency. Results come back
	// over a buffered channel.

	opts := processor.Options{AreaHa: areaHa, DryRun: dryRun}

	var wg sync.WaitGroup
	results := make(chan processor.Result, len(inputFiles))
	slots := make(chan struct{}, cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			results <- processor.New(path, cfg, opts).Run()
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var errorEntries []utils.ErrorLogEntry

	for result := range results {
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRows += result.Stats.Rows
			summary.TotalLevels += result.Stats.Levels
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				Rows:        result.Stats.Rows,
				Levels:      result.Stats.Levels,
				ProcessTime: result.Stats.ProcessingTime,
			})
			if dryRun {
				fmt.Printf("  OK %s (%d rows, %d levels, dry run)\n",
					filepath.Base(result.FilePath), result.Stats.Rows, result.Stats.Levels)
			} else {
				fmt.Printf("  OK %s -> %s (%d rows, %d levels)\n",
					filepath.Base(result.FilePath), filepath.Base(result.OutputFile),
					result.Stats.Rows, result.Stats.Levels)
			}
			if verbose {
				fmt.Printf("     processed in %s\n", result.Stats.ProcessingTime)
			}
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     filepath.Base(result.FilePath),
				ErrorType:    fmt.Sprintf("%T", result.Error),
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  FAIL %s: %v\n", filepath.Base(result.FilePath), result.Error)
		}
	}

	// =========================================================================
	// STEP 5: WRITE RUN ARTIFACTS AND PRINT SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	if !dryRun {
		if len(errorEntries) > 0 {
			if logPath, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err == nil && logPath != "" {
				fmt.Printf("Errors logged to %s\n", logPath)
			}
		}
		if _, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			fmt.Printf("Warning: failed to write summary log: %v\n", err)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:  %d\n", summary.TotalFiles)
	fmt.Printf("Successful:   %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:       %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed: %s\n", time.Since(startTime))

	if summary.FailedFiles > 0 && !cfg.ContinueOnError {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}
