// =============================================================================
// Forest Inventory Processor - Per-File Orchestration
// =============================================================================
//
// This module runs the full processing pipeline for a single input file:
//
//   1. Read the raw table (XLSX or CSV)
//   2. Resolve the input columns against the canonical schema
//   3. Run the inventory transform pipeline
//   4. Write the output workbook
//   5. Archive the processed input (and a copy of the output)
//
// Each file gets its own Processor and its own fully isolated computation;
// nothing is shared between files, so files can be processed concurrently.
//
// =============================================================================

package processor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/florytica/forest-inventory/internal/config"
	"github.com/florytica/forest-inventory/internal/inventory"
	"github.com/florytica/forest-inventory/internal/report"
	"github.com/florytica/forest-inventory/internal/schema"
	"github.com/florytica/forest-inventory/internal/sheet"
	"github.com/florytica/forest-inventory/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file that was processed.
	FilePath string

	// OutputFile is the generated workbook (empty on failure or dry run).
	OutputFile string

	// Success indicates whether processing completed.
	Success bool

	// Error holds the failure cause, nil on success.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about one processed file.
type Stats struct {
	// Rows is the number of data rows in the per-row table.
	Rows int

	// Levels is the number of distinct sampling levels found.
	Levels int

	// ProcessingTime is the time taken for the whole file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Options are the per-run knobs that override the configuration.
type Options struct {
	// AreaHa is the total property area in hectares; negative means "use
	// the configured default". Zero disables property-wide totals.
	AreaHa float64

	// DryRun computes everything but writes and archives nothing.
	DryRun bool
}

// Processor handles the conversion of a single inventory spreadsheet.
type Processor struct {
	path string
	cfg  *config.Config
	opts Options
	fm   *utils.FileManager
}

// New creates a Processor for one input file.
func New(path string, cfg *config.Config, opts Options) *Processor {
	return &Processor{
		path: path,
		cfg:  cfg,
		opts: opts,
		fm: utils.NewFileManager(
			cfg.InputDir,
			cfg.OutputDir,
			cfg.InputArchiveDir,
			cfg.OutputArchiveDir,
		),
	}
}

// Run executes the processing pipeline for the file.
func (p *Processor) Run() Result {
	startTime := time.Now()
	result := Result{FilePath: p.path}

	// =========================================================================
	// STEP 1: READ THE RAW TABLE
	// =========================================================================

	table, err := sheet.Read(p.path, p.cfg.Survey.DataSheetNames)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}

	// =========================================================================
	// STEP 2: RESOLVE THE COLUMNS
	// =========================================================================
	// A missing mandatory measurement column is fatal here, before any row
	// is processed.

	resolver := schema.NewResolver(p.cfg.Survey.ColumnAliases)
	columns, err := resolver.Resolve(table.Headers)
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 3: RUN THE PIPELINE
	// =========================================================================

	params := p.params()
	res, err := inventory.Process(buildInput(table, columns), params)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.Rows = len(res.Rows)
	result.Stats.Levels = len(res.Levels)

	if p.opts.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE THE OUTPUT WORKBOOK
	// =========================================================================

	base := strings.TrimSuffix(filepath.Base(p.path), filepath.Ext(p.path))
	outputName := utils.GenerateOutputFileName(p.cfg.OutputNameFormat, map[string]string{
		"original": base,
	})
	outputPath := filepath.Join(p.cfg.OutputDir, outputName)

	if err := report.Write(outputPath, res); err != nil {
		result.Error = fmt.Errorf("failed to write output workbook: %w", err)
		return result
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================

	if _, err := p.fm.ArchiveInputFile(p.path); err != nil {
		result.Error = fmt.Errorf("failed to archive input: %w", err)
		return result
	}
	if _, err := p.fm.ArchiveOutputFile(outputPath); err != nil {
		result.Error = fmt.Errorf("failed to archive output: %w", err)
		return result
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// params assembles the pipeline parameters from the configuration plus the
// per-run overrides.
func (p *Processor) params() inventory.Params {
	params := inventory.Params{
		AreaHa:             p.cfg.AreaHa,
		PlotAreas:          make(map[string]float64, len(p.cfg.Survey.PlotAreas)),
		RegenerationLevels: p.cfg.Survey.RegenerationLevels,
		ReferenceLevel:     p.cfg.Survey.ReferenceLevel,
		DiameterClassFloor: p.cfg.Survey.DiameterClassFloor,
		HeightClassFloor:   p.cfg.Survey.HeightClassFloor,
	}
	// Plot areas are keyed by normalized level so lookups match grouping.
	for level, area := range p.cfg.Survey.PlotAreas {
		params.PlotAreas[inventory.NormalizeLevel(level)] = area
	}
	if p.opts.AreaHa >= 0 {
		params.AreaHa = p.opts.AreaHa
	}
	return params
}

// buildInput converts the raw table into the pipeline input using the
// resolved column map.
func buildInput(table *sheet.Table, columns schema.ColumnMap) inventory.Input {
	in := inventory.Input{
		HasCircumference:    columns.Has(schema.FieldCircumference),
		HasDiameter:         columns.Has(schema.FieldDiameter),
		HasCommercialHeight: columns.Has(schema.FieldCommercialHeight),
		HasTotalHeight:      columns.Has(schema.FieldTotalHeight),
		HasLevel:            columns.Has(schema.FieldLevel),
		HasPlot:             columns.Has(schema.FieldPlot),
		HasSpecies:          columns.Has(schema.FieldSpecies),
		HasCount:            columns.Has(schema.FieldCount),
	}

	pick := func(row map[string]string, field schema.Field) string {
		header, ok := columns[field]
		if !ok {
			return ""
		}
		return row[header]
	}

	in.Rows = make([]inventory.RawRow, len(table.Rows))
	for i, row := range table.Rows {
		in.Rows[i] = inventory.RawRow{
			SourceRow:        table.SourceRows[i],
			Level:            pick(row, schema.FieldLevel),
			Plot:             pick(row, schema.FieldPlot),
			Species:          pick(row, schema.FieldSpecies),
			Circumference:    pick(row, schema.FieldCircumference),
			Diameter:         pick(row, schema.FieldDiameter),
			CommercialHeight: pick(row, schema.FieldCommercialHeight),
			TotalHeight:      pick(row, schema.FieldTotalHeight),
			Count:            pick(row, schema.FieldCount),
		}
	}

	return in
}
