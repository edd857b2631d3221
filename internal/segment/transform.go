// =============================================================================
// shipcheck - Group Transform
// =============================================================================
//
// Exported invoices carry one overloaded description cell: the part name, the
// embedded "-PART NO ... MODEL NO ..." tail, and tolerance text written as
// "+OR-". Customs paperwork wants these separated. The transform rewrites each
// group before it is written:
//
//   - the description is cut at the split marker; the model number is pulled
//     out of the tail into its own column and "+OR-" becomes ±
//   - an item number column counts the rows of each group from 1
//   - columns are renamed to their customs names and the declared lead
//     columns are moved to the front
//
// The transform is configuration-driven and optional; a group whose header
// lacks the description column passes through unchanged.
//
// =============================================================================

package segment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/importdesk/shipcheck/internal/table"
)

// plusMinusPattern matches tolerance text written as "+OR-".
var plusMinusPattern = regexp.MustCompile(`(?i)\s*\+OR-\s*`)

// trailingHyphen trims the separator left behind when the description is cut
// at the split marker.
var trailingHyphen = regexp.MustCompile(`-\s*$`)

// Transform rewrites the header and rows of a group for customs output.
type Transform struct {
	// DescriptionColumn is the overloaded description column, e.g. "Desc".
	// The column is matched case-insensitively after trimming.
	DescriptionColumn string

	// SplitMarker cuts the description; everything from the marker on is the
	// tail the model number is extracted from, e.g. "-PART NO".
	SplitMarker string

	// ModelPattern extracts the model number from the full description. The
	// first capture group is used.
	ModelPattern *regexp.Regexp

	// ModelColumn is the name of the appended model number column,
	// e.g. "Model Nos.".
	ModelColumn string

	// ItemNumberColumn, when set, is prepended and numbers the rows of each
	// group from 1, e.g. "Item Nos.".
	ItemNumberColumn string

	// CategoryColumn, when set, is overwritten with the item name: the part
	// of the cleaned description before its first hyphen.
	CategoryColumn string

	// RenameColumns maps export column names to their customs names,
	// e.g. "Desc" -> "Description", "HSN" -> "India HS code".
	RenameColumns map[string]string

	// FrontColumns are moved to the front of the header in this order;
	// names absent from the header are ignored.
	FrontColumns []string
}

// Apply rewrites one group. Groups without the description column pass
// through unchanged; the transform never fails.
func (t *Transform) Apply(g Group) Group {
	descCol := t.findDescriptionColumn(g.Header)
	if descCol == "" {
		return g
	}

	header := t.newHeader(g.Header)
	rows := make([]table.Row, 0, len(g.Rows))
	for i, row := range g.Rows {
		cells := make(map[string]string, len(header))
		for _, col := range g.Header {
			cells[t.renamed(col)] = row.Get(col)
		}

		base, model := t.splitDescription(row.Get(descCol))
		cells[t.renamed(descCol)] = base
		if t.ModelColumn != "" {
			cells[t.ModelColumn] = model
		}
		if t.CategoryColumn != "" && hasColumn(g.Header, t.CategoryColumn) {
			cells[t.renamed(t.CategoryColumn)] = itemName(base)
		}
		if t.ItemNumberColumn != "" {
			cells[t.ItemNumberColumn] = strconv.Itoa(i + 1)
		}

		rows = append(rows, table.Row{Number: row.Number, Cells: cells})
	}

	g.Header = header
	g.Rows = rows
	return g
}

// splitDescription cuts the description at the split marker and extracts the
// model number from the full text. Both halves are cleaned.
func (t *Transform) splitDescription(desc string) (base, model string) {
	desc = strings.TrimSpace(desc)

	base = desc
	if t.SplitMarker != "" {
		if i := indexFold(base, t.SplitMarker); i >= 0 {
			base = base[:i]
		}
	}
	base = strings.TrimSpace(trailingHyphen.ReplaceAllString(strings.TrimSpace(base), ""))
	base = plusMinusPattern.ReplaceAllString(base, "±")

	if t.ModelPattern != nil {
		if m := t.ModelPattern.FindStringSubmatch(desc); len(m) > 1 {
			model = strings.TrimSpace(m[1])
		}
	}
	return base, model
}

// newHeader builds the transformed header: item numbers first, the renamed
// source columns, the model column appended, then the front ordering.
func (t *Transform) newHeader(header []string) []string {
	out := make([]string, 0, len(header)+2)
	if t.ItemNumberColumn != "" {
		out = append(out, t.ItemNumberColumn)
	}
	for _, col := range header {
		out = append(out, t.renamed(col))
	}
	if t.ModelColumn != "" {
		out = append(out, t.ModelColumn)
	}
	return frontOrder(out, t.FrontColumns)
}

// renamed returns the customs name of a column, or the column itself.
func (t *Transform) renamed(col string) string {
	if name, ok := t.RenameColumns[col]; ok {
		return name
	}
	return col
}

// findDescriptionColumn locates the description column in a header,
// case-insensitively.
func (t *Transform) findDescriptionColumn(header []string) string {
	for _, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), t.DescriptionColumn) {
			return col
		}
	}
	return ""
}

// itemName derives the item name from a cleaned description: the part before
// the first hyphen.
func itemName(desc string) string {
	name, _, _ := strings.Cut(desc, "-")
	return strings.TrimSpace(name)
}

// frontOrder moves the named columns to the front, keeping the rest in their
// existing order.
func frontOrder(header, front []string) []string {
	if len(front) == 0 {
		return header
	}
	out := make([]string, 0, len(header))
	taken := make(map[string]bool, len(front))
	for _, want := range front {
		if hasColumn(header, want) && !taken[want] {
			out = append(out, want)
			taken[want] = true
		}
	}
	for _, col := range header {
		if !taken[col] {
			out = append(out, col)
		}
	}
	return out
}

// indexFold returns the byte offset of the first case-insensitive occurrence
// of marker in s, or -1. Offsets are computed on s itself, never on a folded
// copy whose byte positions could differ.
func indexFold(s, marker string) int {
	if marker == "" {
		return -1
	}
	for i := 0; i+len(marker) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(marker)], marker) {
			return i
		}
	}
	return -1
}

// hasColumn reports whether the header contains the named column.
func hasColumn(header []string, name string) bool {
	for _, col := range header {
		if col == name {
			return true
		}
	}
	return false
}
