// =============================================================================
// shipcheck - Table Model
// =============================================================================
//
// This package defines the in-memory representation of spreadsheet data used
// by the reconciliation and segmentation engines. A Table is an ordered
// sequence of Rows sharing one header schema. Rows are created once at load
// time and never mutated afterwards; every lookup and comparison is read-only.
//
// The engines depend only on this model, never on the spreadsheet library.
// The xlsxio package converts workbooks into Tables and back.
//
// =============================================================================

package table

// =============================================================================
// ROW
// =============================================================================

// Row is one data row: an ordered mapping of column name to cell value.
// Cell values are kept as strings; numeric interpretation happens at
// comparison and keying time, not at load time.
type Row struct {
	// Number is the 1-based row number in the source sheet.
	// Used for reporting only; it carries no lookup semantics.
	Number int

	// Cells maps column name to cell value. A column missing from the map
	// and a column mapped to "" are both treated as empty.
	Cells map[string]string
}

// Get returns the value of the named column. Missing columns read as "".
func (r Row) Get(column string) string {
	return r.Cells[column]
}

// Has reports whether the named column carries a non-empty value.
func (r Row) Has(column string) bool {
	return r.Cells[column] != ""
}

// IsEmpty reports whether every cell of the row is empty.
func (r Row) IsEmpty() bool {
	for _, v := range r.Cells {
		if v != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered sequence of Rows sharing one header schema.
type Table struct {
	// Name is the sheet or tab name the table was loaded from.
	Name string

	// Header is the ordered list of column names.
	Header []string

	// Rows are the data rows, in source order.
	Rows []Row
}

// New creates a Table from an ordered header and raw cell rows.
// firstRowNumber is the 1-based source row number of the first data row,
// so that findings can reference the original sheet position even when
// preamble rows were dropped before the header.
func New(name string, header []string, data [][]string, firstRowNumber int) *Table {
	t := &Table{
		Name:   name,
		Header: header,
		Rows:   make([]Row, 0, len(data)),
	}
	for i, cells := range data {
		row := Row{
			Number: firstRowNumber + i,
			Cells:  make(map[string]string, len(header)),
		}
		for col, name := range header {
			if col < len(cells) {
				row.Cells[name] = cells[col]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// HasColumn reports whether the table's header contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
