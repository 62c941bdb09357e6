// =============================================================================
// Forest Inventory Processor - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from a single
// YAML file. It covers two concerns:
//
//   1. Runtime settings: directories, output naming, concurrency.
//   2. Survey parameters: the plot-area lookup table, regeneration levels,
//      the reference stratum, class floors and extra column aliases.
//
// The survey parameters all have fixed domain defaults matching the standard
// sampling design (10x50 m and 10x10 m tree plots, 5x5 / 2x2 / 1x1 m
// regeneration subplots); the configuration file only needs to mention what
// deviates from them.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for inventory spreadsheets to process.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the processed workbooks and run reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where source files are moved after successful
	// processing. Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps long-term copies of generated workbooks.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names generated workbooks. Placeholders:
	//   {original}  - input file name without extension
	//   {timestamp} - YYYYMMDD_HHMMSS
	//   {date}      - YYYYMMDD
	//   {time}      - HHMMSS
	//   {uuid}      - a random UUID
	// Default: "{original}_processado_{timestamp}.xlsx"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// AreaHa is the default total property area in hectares. Zero disables
	// property-wide totals. The --area flag overrides this per run.
	AreaHa float64 `yaml:"area_ha"`

	// MaxConcurrency caps how many files are processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError makes a run with failed files exit successfully
	// anyway. Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// =========================================================================
	// SURVEY PARAMETERS
	// =========================================================================

	// Survey holds the sampling-design parameters.
	Survey SurveyConfig `yaml:"survey"`
}

// SurveyConfig describes the sampling design of the inventory.
type SurveyConfig struct {
	// PlotAreas maps a level label to its nominal sample-plot area in m².
	// Levels absent from the table get an undefined expansion factor.
	PlotAreas map[string]float64 `yaml:"plot_areas"`

	// RegenerationLevels lists levels whose rows carry an explicit
	// individual count instead of one tree per row.
	RegenerationLevels []string `yaml:"regeneration_levels"`

	// ReferenceLevel is the stratum whose values define the diameter and
	// height class partitions. Default: "S2"
	ReferenceLevel string `yaml:"reference_level"`

	// DiameterClassFloor is the minimum lower bound for diameter classes
	// in cm. Default: 10
	DiameterClassFloor float64 `yaml:"diameter_class_floor"`

	// HeightClassFloor is the minimum lower bound for height classes in m.
	// Default: 1.5
	HeightClassFloor float64 `yaml:"height_class_floor"`

	// ColumnAliases adds extra accepted header spellings per canonical
	// field (level, circumference, diameter, commercial_height,
	// total_height, plot, species, count). Merged into the built-in list.
	ColumnAliases map[string][]string `yaml:"column_aliases"`

	// DataSheetNames lists workbook sheet names to prefer when the input
	// has several sheets. The first existing name wins; otherwise the
	// first sheet is used. Default: ["Dados_Básicos", "Dados Basicos"]
	DataSheetNames []string `yaml:"data_sheet_names"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, applies defaults and validates the
// result. A missing file is not an error: the built-in defaults apply, so
// the tool works out of the box in an empty directory.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration, as used when no file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills every unset option.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputArchiveDir == "" {
		cfg.OutputArchiveDir = "./output_archive"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{original}_processado_{timestamp}.xlsx"
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}

	s := &cfg.Survey
	if len(s.PlotAreas) == 0 {
		s.PlotAreas = map[string]float64{
			"S2": 500,
			"S1": 100,
			"R3": 25,
			"R2": 4,
			"R1": 1,
		}
	}
	if len(s.RegenerationLevels) == 0 {
		s.RegenerationLevels = []string{"R1", "R2", "R3"}
	}
	if s.ReferenceLevel == "" {
		s.ReferenceLevel = "S2"
	}
	if s.DiameterClassFloor == 0 {
		s.DiameterClassFloor = 10
	}
	if s.HeightClassFloor == 0 {
		s.HeightClassFloor = 1.5
	}
	if len(s.DataSheetNames) == 0 {
		s.DataSheetNames = []string{"Dados_Básicos", "Dados Basicos"}
	}
}

// validate rejects configurations that would fail later in confusing ways.
func validate(cfg *Config) error {
	if cfg.AreaHa < 0 {
		return fmt.Errorf("area_ha must not be negative (got %v)", cfg.AreaHa)
	}
	for level, area := range cfg.Survey.PlotAreas {
		if area <= 0 {
			return fmt.Errorf("plot area for level %q must be positive (got %v)", level, area)
		}
	}
	return nil
}
