// =============================================================================
// Forest Inventory Processor - Shared Inventory Types
// =============================================================================
//
// This file defines the data model for the inventory pipeline:
//   - RawRow / Input : the untyped table handed to the pipeline
//   - Row            : one measured tree/sample with all derived fields
//   - LevelSummary   : per-level aggregated indicators
//   - Result         : the full pipeline output
//
// Undefined numeric values are represented as NaN throughout. A NaN in a
// prerequisite propagates silently to every downstream derived field; the
// row itself is always retained in the output table.
//
// =============================================================================

package inventory

import "math"

// =============================================================================
// PIPELINE INPUT
// =============================================================================

// RawRow is one data row of the input spreadsheet after column resolution.
// All measurement cells are kept as raw text; numeric coercion happens inside
// the pipeline so that a non-numeric cell degrades to NaN instead of failing
// the whole file.
type RawRow struct {
	// SourceRow is the 1-based row number in the input sheet, kept for
	// error reporting.
	SourceRow int

	// Level is the sampling stratum label, e.g. "S2" or "R1".
	Level string

	// Plot is the physical sample-plot identifier (may be empty).
	Plot string

	// Species is a passthrough label (may be empty).
	Species string

	// Circumference is the raw CAP cell text in cm (empty when the column
	// is absent or the cell is blank).
	Circumference string

	// Diameter is the raw DAP cell text in cm.
	Diameter string

	// CommercialHeight is the raw HC cell text in m.
	CommercialHeight string

	// TotalHeight is the raw HT cell text in m.
	TotalHeight string

	// Count is the raw individual-count cell text (regeneration levels).
	Count string
}

// Input is the table handed to Process. The Has* flags record which optional
// columns were actually present in the source file, which changes how some
// stages behave (e.g. plot counting falls back to row counts when no plot
// column exists).
type Input struct {
	Rows []RawRow

	HasCircumference    bool
	HasDiameter         bool
	HasCommercialHeight bool
	HasTotalHeight      bool
	HasLevel            bool
	HasPlot             bool
	HasSpecies          bool
	HasCount            bool
}

// =============================================================================
// PIPELINE PARAMETERS
// =============================================================================

// Params carries the survey parameters for one pipeline run. All of these
// have fixed domain defaults (see DefaultParams) and can be overridden via
// the survey section of the configuration file.
type Params struct {
	// AreaHa is the total property area in hectares. Zero means "per-hectare
	// metrics only": no property-wide totals are produced.
	AreaHa float64

	// PlotAreas maps a normalized level label to its nominal sample-plot
	// area in m². Levels missing from the table get an undefined expansion
	// factor.
	PlotAreas map[string]float64

	// RegenerationLevels lists the levels whose rows represent multiple
	// individuals via an explicit count column.
	RegenerationLevels []string

	// ReferenceLevel is the "main tree-level" stratum used to derive the
	// diameter and height class partitions.
	ReferenceLevel string

	// DiameterClassFloor is the minimum lower bound for diameter classes, cm.
	DiameterClassFloor float64

	// HeightClassFloor is the minimum lower bound for height classes, m.
	HeightClassFloor float64
}

// DefaultParams returns the standard survey parameters: 10x50 m plots for
// the upper stratum, 10x10 m for the lower one, and 5x5 / 2x2 / 1x1 m
// regeneration subplots.
func DefaultParams() Params {
	return Params{
		AreaHa: 0,
		PlotAreas: map[string]float64{
			"S2": 500,
			"S1": 100,
			"R3": 25,
			"R2": 4,
			"R1": 1,
		},
		RegenerationLevels: []string{"R1", "R2", "R3"},
		ReferenceLevel:     "S2",
		DiameterClassFloor: 10,
		HeightClassFloor:   1.5,
	}
}

// =============================================================================
// PIPELINE OUTPUT
// =============================================================================

// Row is one fully processed sample: the original identification and
// measurement columns plus every derived field. Any float64 field may be
// NaN when its prerequisites were missing or invalid.
type Row struct {
	SourceRow int
	Level     string
	Plot      string
	Species   string

	// Count is the explicit individual count for regeneration rows
	// (NaN when the column is absent or the cell is blank).
	Count float64

	// Circumference (CAP) in cm and Diameter (DAP) in cm.
	Circumference float64
	Diameter      float64

	// CommercialHeight (HC) and TotalHeight (HT) in m.
	CommercialHeight float64
	TotalHeight      float64

	// BasalArea is g in m².
	BasalArea float64

	// VolumeTotalH and VolumeCommercialH are the volume model evaluated
	// with HT and HC respectively. Volume is the base volume: the total
	// height variant when defined, otherwise the commercial one.
	VolumeTotalH      float64
	VolumeCommercialH float64
	Volume            float64

	// ExpansionFactor converts this row's plot measurement to ha⁻¹.
	ExpansionFactor float64

	IndPerHa       float64
	BasalAreaPerHa float64
	VolumePerHa    float64

	// DiameterClass and HeightClass are the size-class labels derived from
	// the reference-level Sturges partition. "-" when unclassified.
	DiameterClass string
	HeightClass   string

	// ZScore is the standardized deviation score of the base volume.
	ZScore float64
}

// LevelSummary is one row of the per-level indicator table.
type LevelSummary struct {
	// Level is the normalized stratum label.
	Level string

	// Plots is the number of distinct sampled plots observed for the level.
	Plots int

	// ExpansionFactor is the level's single expansion factor (ha⁻¹).
	ExpansionFactor float64

	// Individuals is the total sampled individual count: the sum of the
	// explicit count column for regeneration levels, the row count otherwise.
	Individuals float64

	// BasalArea and Volume are the sampled totals in m² and m³.
	BasalArea float64
	Volume    float64

	// Per-hectare estimates.
	IndPerHa       float64
	BasalAreaPerHa float64
	VolumePerHa    float64

	// Property-wide estimates (per-hectare value x property area). NaN when
	// no positive property area was supplied.
	IndTotal       float64
	BasalAreaTotal float64
	VolumeTotal    float64
}

// Result is the complete output of one pipeline run.
type Result struct {
	// Rows is the augmented per-row table, in input order.
	Rows []Row

	// Levels is the per-level summary, sorted by level label.
	Levels []LevelSummary

	// DiameterBins and HeightBins are the Sturges class edges derived from
	// the reference level (nil when fewer than 2 usable values existed).
	DiameterBins []float64
	HeightBins   []float64
}

// undefined is the canonical "no value" marker for derived fields.
func undefined() float64 { return math.NaN() }

// defined reports whether v carries an actual value.
func defined(v float64) bool { return !math.IsNaN(v) }
