// =============================================================================
// shipcheck - Workbook Writer
// =============================================================================
//
// The writer is the output shim: it renders segmentation groups as one tab
// per invoice and the findings report as a workbook with a summary sheet
// plus one sheet per finding kind. Header rows get the same styling the
// upstream documents use (bold on a light green fill with thin borders),
// and column widths are sized to the longest value.
//
// =============================================================================

package xlsxio

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/segment"
	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// GROUP OUTPUT
// =============================================================================

// WriteGroups writes one tab per group, header first, preserving column
// order. keepColumns optionally restricts and reorders the output columns;
// configured columns missing from the header are ignored.
func WriteGroups(path string, groups []segment.Group, keepColumns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultUsed := false
	for _, g := range groups {
		if g.SheetName == "Sheet1" {
			defaultUsed = true
		}
		header := outputColumns(g.Header, keepColumns)
		if _, err := f.NewSheet(g.SheetName); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", g.SheetName, err)
		}
		if err := writeSheet(f, g.SheetName, header, groupCells(g, header), headerStyle); err != nil {
			return err
		}
	}

	// The workbook starts with a default sheet; remove it unless a group
	// landed on that name.
	if len(groups) > 0 && !defaultUsed {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// outputColumns applies the keep-columns filter to a header.
func outputColumns(header, keep []string) []string {
	if len(keep) == 0 {
		return header
	}
	out := make([]string, 0, len(keep))
	for _, want := range keep {
		for _, h := range header {
			if h == want {
				out = append(out, want)
				break
			}
		}
	}
	return out
}

// groupCells renders a group's rows under the given output columns.
func groupCells(g segment.Group, header []string) [][]string {
	rows := make([][]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = r.Get(col)
		}
		rows = append(rows, cells)
	}
	return rows
}

// =============================================================================
// REPORT OUTPUT
// =============================================================================

// reportHeader is the column layout of the per-kind report sheets.
var reportHeader = []string{
	"Sheet", "Row", "Reference", "Field",
	"Primary Value", "Reference Value", "Key", "Candidate Rows", "Detail",
}

// WriteReport writes the findings report workbook: a Summary sheet with
// per-kind counts and audit totals, then one sheet per finding kind that
// occurred, in the fixed kind order.
func WriteReport(path string, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, rep, headerStyle); err != nil {
		return err
	}

	for _, kind := range report.Kinds {
		findings := rep.ByKind(kind)
		if len(findings) == 0 {
			continue
		}
		name := segment.SanitizeSheetName(string(kind))
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		rows := make([][]string, 0, len(findings))
		for _, fd := range findings {
			rows = append(rows, findingCells(fd))
		}
		if err := writeSheet(f, name, reportHeader, rows, headerStyle); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

// writeSummarySheet renders the run totals and per-kind counts.
func writeSummarySheet(f *excelize.File, rep *report.Report, headerStyle int) error {
	const name = "Summary"
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	s := rep.Summarize()
	rows := [][]string{
		{"Run ID", s.RunID},
		{"Rows Processed", fmt.Sprintf("%d", s.RowsProcessed)},
		{"Fields Checked", fmt.Sprintf("%d", s.FieldsChecked)},
		{"Total Findings", fmt.Sprintf("%d", s.TotalFindings)},
	}
	for _, kind := range report.Kinds {
		if n := s.Counts[kind]; n > 0 {
			rows = append(rows, []string{string(kind), fmt.Sprintf("%d", n)})
		}
	}
	return writeSheet(f, name, []string{"Item", "Value"}, rows, headerStyle)
}

// findingCells renders one finding as a report row.
func findingCells(f report.Finding) []string {
	row := ""
	if f.Row > 0 {
		row = fmt.Sprintf("%d", f.Row)
	}
	candidates := make([]string, 0, len(f.CandidateRows))
	for _, c := range f.CandidateRows {
		candidates = append(candidates, fmt.Sprintf("%d", c))
	}
	return []string{
		f.Sheet, row, f.Reference, f.Field,
		f.PrimaryValue, f.ReferenceValue, f.Key,
		strings.Join(candidates, ", "), f.Detail,
	}
}

// =============================================================================
// SHEET RENDERING
// =============================================================================

// writeSheet writes a header row and data rows to a sheet, styles the
// header, and sizes each column to its widest value.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", sheet, err)
		}
	}
	for i, cells := range rows {
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			// Numeric text whose canonical form is unchanged becomes a
			// number cell so totals stay summable in the output. Values
			// like "0012" stay text: a part number must not collapse
			// to 12.
			if canon, ok := table.CanonicalNumber(value); ok && canon == strings.TrimSpace(value) {
				num, _ := table.ParseNumber(value)
				if err := f.SetCellValue(sheet, cell, num); err != nil {
					return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
				}
				continue
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
			}
		}
	}

	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
	}

	return sizeColumns(f, sheet, header, rows)
}

// sizeColumns widens each column to its longest value plus padding.
func sizeColumns(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for col := range header {
		width := len(header[col])
		for _, cells := range rows {
			if col < len(cells) && len(cells[col]) > width {
				width = len(cells[col])
			}
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("invalid column number: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+2)); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", name, sheet, err)
		}
	}
	return nil
}

// newHeaderStyle creates the shared header row style.
func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D8E4BC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
}
