// =============================================================================
// Forest Inventory Processor - Output Workbook Writer
// =============================================================================
//
// This module renders a pipeline Result into the exportable workbook:
//
//   Sheet "Processado"         - the augmented per-row table
//   Sheet "Indicadores_Nivel"  - the per-level summary
//
// COLUMN ORDER ("Processado", stable and documented here):
//   identification (PF, Nivel, Especie, N de Ind.), then CAP, DAP, heights,
//   basal area, volumes, expansion factor, per-hectare indicators, class
//   buckets, score.
//
// Undefined values are written as empty cells in the row table and as "-"
// in the summary, matching how the indicator table is read by field staff.
//
// =============================================================================

package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/florytica/forest-inventory/internal/inventory"
)

// Sheet names of the generated workbook.
const (
	RowsSheet    = "Processado"
	SummarySheet = "Indicadores_Nivel"
)

// rowHeaders is the fixed column order of the per-row sheet.
var rowHeaders = []interface{}{
	"PF", "Nivel", "Especie", "N de Ind.",
	"CAP (cm)", "DAP (cm)", "HC (m)", "HT (m)",
	"g (m2)", "Vol. HC (m3)", "Vol. HT (m3)", "Vol. (m3)",
	"FE (ha-1)", "Ind.ha-1", "g.ha-1 (m2)", "Vol.ha-1 (m3)",
	"Classe DAP", "Classe Altura", "Escore Z",
}

// summaryHeaders is the fixed column order of the per-level sheet.
var summaryHeaders = []interface{}{
	"Nivel", "Parcelas", "Fator (ha-1)",
	"N amostrado", "g amostrada (m2)", "Vol amostrado (m3)",
	"Ind.ha-1", "g.ha-1 (m2)", "Vol m3.ha",
	"Ind. estimado (area)", "g estimado (m2 area)", "Vol estimado (m3 area)",
}

// =============================================================================
// WRITER
// =============================================================================

// Write renders the result into an XLSX workbook at path.
func Write(path string, res *inventory.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the row table.
	if err := f.SetSheetName(f.GetSheetName(0), RowsSheet); err != nil {
		return fmt.Errorf("failed to name rows sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeRows(f, res.Rows); err != nil {
		return err
	}
	if err := writeSummary(f, res.Levels); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows fills the Processado sheet.
func writeRows(f *excelize.File, rows []inventory.Row) error {
	if err := setRow(f, RowsSheet, 1, rowHeaders); err != nil {
		return err
	}

	for i := range rows {
		r := &rows[i]
		values := []interface{}{
			r.Plot, r.Level, r.Species, cell(r.Count),
			cell(r.Circumference), cell(r.Diameter),
			cell(r.CommercialHeight), cell(r.TotalHeight),
			cell(r.BasalArea), cell(r.VolumeCommercialH),
			cell(r.VolumeTotalH), cell(r.Volume),
			cell(r.ExpansionFactor), cell(r.IndPerHa),
			cell(r.BasalAreaPerHa), cell(r.VolumePerHa),
			r.DiameterClass, r.HeightClass, cell(r.ZScore),
		}
		if err := setRow(f, RowsSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// writeSummary fills the Indicadores_Nivel sheet. Values are rounded the way
// the indicator table is conventionally presented: factors and per-hectare
// areas/volumes to 4 decimals, densities to 2, estimated individuals to
// whole trees.
func writeSummary(f *excelize.File, levels []inventory.LevelSummary) error {
	if err := setRow(f, SummarySheet, 1, summaryHeaders); err != nil {
		return err
	}

	for i := range levels {
		s := &levels[i]
		values := []interface{}{
			s.Level, s.Plots, rounded(s.ExpansionFactor, 4),
			rounded(s.Individuals, 0), rounded(s.BasalArea, 4), rounded(s.Volume, 4),
			rounded(s.IndPerHa, 2), rounded(s.BasalAreaPerHa, 4), rounded(s.VolumePerHa, 4),
			rounded(s.IndTotal, 0), rounded(s.BasalAreaTotal, 2), rounded(s.VolumeTotal, 2),
		}
		if err := setRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes one sheet row starting at column A.
func setRow(f *excelize.File, sheetName string, row int, values []interface{}) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell reference: %w", err)
	}
	if err := f.SetSheetRow(sheetName, ref, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheetName, err)
	}
	return nil
}

// cell converts a possibly undefined value for the row sheet: NaN -> blank.
func cell(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}

// rounded converts a possibly undefined value for the summary sheet:
// NaN -> "-", otherwise rounded to the given number of decimals.
func rounded(v float64, decimals int) interface{} {
	if math.IsNaN(v) {
		return "-"
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
