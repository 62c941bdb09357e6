// =============================================================================
// Forest Inventory Processor - Spreadsheet Reader
// =============================================================================
//
// This module reads the raw inventory table from disk. Two formats are
// supported:
//
//   - .xlsx : read via excelize. Only one sheet is consulted; when the
//             workbook has several, the first sheet matching a conventional
//             data-sheet name wins, otherwise the first sheet is used.
//   - .csv  : read via encoding/csv. The delimiter is sniffed from the
//             header line (field exports commonly use ';').
//
// The reader is deliberately dumb: it produces headers plus rows of raw cell
// text and leaves all interpretation (column resolution, numeric coercion)
// to the schema and inventory packages.
//
// =============================================================================

package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is the raw tabular content of one input file.
type Table struct {
	// Headers are the column names from the first row, trimmed.
	Headers []string

	// Rows holds the data rows as header -> raw cell text. Cells beyond the
	// header width are dropped; missing trailing cells read as "".
	Rows []map[string]string

	// SourceRows maps each entry of Rows to its 1-based row number in the
	// source file (blank rows are skipped, so numbering may have gaps).
	SourceRows []int

	// SourceFile is the path the table was read from.
	SourceFile string

	// SheetName is the workbook sheet consulted (empty for CSV input).
	SheetName string
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read loads an input file, dispatching on its extension. preferredSheets
// only applies to workbooks.
func Read(path string, preferredSheets []string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, preferredSheets)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", filepath.Ext(path))
	}
}

// readWorkbook reads the data sheet of an XLSX workbook.
func readWorkbook(path string, preferredSheets []string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := pickSheet(f, preferredSheets)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	table, err := fromRows(rows)
	if err != nil {
		return nil, err
	}
	table.SourceFile = path
	table.SheetName = sheetName
	return table, nil
}

// pickSheet selects the sheet to consult: the first preferred name that
// exists (matched case-insensitively), else the first sheet.
func pickSheet(f *excelize.File, preferred []string) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, want := range preferred {
		for _, have := range sheets {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return have
			}
		}
	}
	return sheets[0]
}

// readCSV reads a CSV export.
func readCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Sniff the delimiter from the first line before parsing.
	head := make([]byte, 4096)
	n, _ := file.Read(head)
	delimiter := sniffDelimiter(string(head[:n]))
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	table, err := fromRows(rows)
	if err != nil {
		return nil, err
	}
	table.SourceFile = path
	return table, nil
}

// sniffDelimiter picks ';' over ',' when the header line favors it.
func sniffDelimiter(headLine string) rune {
	if i := strings.IndexByte(headLine, '\n'); i >= 0 {
		headLine = headLine[:i]
	}
	if strings.Count(headLine, ";") > strings.Count(headLine, ",") {
		return ';'
	}
	return ','
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// fromRows converts raw row slices into a Table, using the first row as
// headers. Rows that are entirely blank are skipped.
func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return &Table{}, nil
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := &Table{Headers: headers}
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		table.Rows = append(table.Rows, record)
		table.SourceRows = append(table.SourceRows, n+2)
	}

	return table, nil
}

// isBlank reports whether every cell of the row is empty.
func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
