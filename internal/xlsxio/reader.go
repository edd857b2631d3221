// =============================================================================
// shipcheck - Workbook Reader
// =============================================================================
//
// The reader is the loading shim between workbook files and the in-memory
// Table model. Shipping documents rarely start at cell A1: sheets open with
// job numbers, bill-of-lading references and other framing rows before the
// actual column header. The reader locates the header row by keyword match,
// standardizes column names through a configured variant map, and drops
// everything above the header.
//
// ERROR SEMANTICS:
//   - a workbook that cannot be opened is a fatal, document-level error
//   - a sheet whose header cannot be located is structural: the sheet is
//     skipped and a missing_header finding is recorded, the run continues
//
// =============================================================================

package xlsxio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/importdesk/shipcheck/internal/logging"
	"github.com/importdesk/shipcheck/internal/reconcile"
	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// LOAD OPTIONS
// =============================================================================

// LoadOptions controls header detection and column standardization.
type LoadOptions struct {
	// HeaderTokens are column name fragments identifying the header row.
	HeaderTokens []string

	// MinHeaderMatches is how many tokens a row must contain to qualify
	// as the header. Zero means all tokens.
	MinHeaderMatches int

	// HeaderScanRows is how many leading rows are scanned for the header.
	// Zero scans the first 5 rows.
	HeaderScanRows int

	// ColumnVariants maps a canonical column name to the header variants
	// that should be renamed to it, compared case-insensitively after
	// cleaning.
	ColumnVariants map[string][]string
}

// =============================================================================
// WORKBOOK LOADING
// =============================================================================

// LoadWorkbook reads every sheet of a workbook file into Tables. Sheets in
// which no header row can be located are skipped with a missing_header
// finding. Failure to open or read the file itself is returned as an error
// and is fatal to the run.
func LoadWorkbook(path string, opts LoadOptions, log logging.Logger, rep *report.Report) (*reconcile.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	wb := &reconcile.Workbook{Name: filepath.Base(path)}

	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheetName, path, err)
		}

		t, ok := sheetToTable(sheetName, rows, opts)
		if !ok {
			log.Warn("No header row found in sheet %q of %s, skipping", sheetName, wb.Name)
			rep.Add(report.Finding{
				Kind:   report.KindMissingHeader,
				Sheet:  sheetName,
				Detail: fmt.Sprintf("no header row in the first %d rows of %s", scanRows(opts), wb.Name),
			})
			continue
		}

		log.Debug("Loaded sheet %q: %d columns, %d rows", sheetName, len(t.Header), t.Len())
		wb.Sheets = append(wb.Sheets, t)
	}

	return wb, nil
}

// RawSheet is one sheet read without header interpretation, for the
// segmentation pipeline.
type RawSheet struct {
	// Name is the sheet name.
	Name string

	// Rows are the cell rows in sheet order.
	Rows [][]string
}

// LoadRaw reads every sheet of a workbook file as raw cell rows.
func LoadRaw(path string) ([]RawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheets []RawSheet
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheetName, path, err)
		}
		sheets = append(sheets, RawSheet{Name: sheetName, Rows: rows})
	}
	return sheets, nil
}

// =============================================================================
// HEADER DETECTION AND COLUMN STANDARDIZATION
// =============================================================================

// sheetToTable locates the header row and builds a Table from the rows
// below it. It returns false when no header row qualifies.
func sheetToTable(sheetName string, rows [][]string, opts LoadOptions) (*table.Table, bool) {
	headerIdx := -1
	limit := scanRows(opts)
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if matchesHeader(rows[i], opts) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, false
	}

	header := make([]string, len(rows[headerIdx]))
	for i, cell := range rows[headerIdx] {
		header[i] = standardizeColumn(cell, opts.ColumnVariants)
	}

	var data [][]string
	for _, cells := range rows[headerIdx+1:] {
		if !rowEmpty(cells) {
			data = append(data, cells)
		}
	}

	// Row numbers stay anchored to the source sheet; dropped empty rows
	// shift them, so renumber from the header instead of tracking gaps.
	// Findings reference these numbers, and for the documents this tool
	// handles the rows below the header are contiguous.
	return table.New(sheetName, header, data, headerIdx+2), true
}

// scanRows returns the effective header scan limit.
func scanRows(opts LoadOptions) int {
	if opts.HeaderScanRows > 0 {
		return opts.HeaderScanRows
	}
	return 5
}

// matchesHeader reports whether a row qualifies as the header row.
func matchesHeader(cells []string, opts LoadOptions) bool {
	need := opts.MinHeaderMatches
	if need <= 0 {
		need = len(opts.HeaderTokens)
	}
	found := 0
	for _, tok := range opts.HeaderTokens {
		lt := strings.ToLower(tok)
		for _, cell := range cells {
			if strings.Contains(strings.ToLower(cell), lt) {
				found++
				break
			}
		}
	}
	return found >= need && need > 0
}

// standardizeColumn cleans a header cell and renames known variants to
// their canonical column name.
func standardizeColumn(cell string, variants map[string][]string) string {
	name := cleanColumnName(cell)
	for canonical, vs := range variants {
		if strings.EqualFold(name, canonical) {
			return canonical
		}
		for _, v := range vs {
			if strings.EqualFold(name, v) {
				return canonical
			}
		}
	}
	return name
}

// cleanColumnName removes embedded line breaks and surrounding whitespace.
// Wrapped header cells carry literal CR/LF characters.
func cleanColumnName(name string) string {
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", " ")
	return strings.Join(strings.Fields(name), " ")
}

// rowEmpty reports whether every cell of a row is blank.
func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
