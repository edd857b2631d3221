// =============================================================================
// shipcheck - Segmentation Engine
// =============================================================================
//
// The engine partitions a flat row sequence into per-invoice groups. The
// export format this handles concatenates several logically distinct
// sub-tables into one sheet, with boundary markers embedded as ordinary rows:
//
//   Job No SI/M 12345                  <- preamble noise (skip pattern)
//   P/N | Desc | Qty | ...             <- shared header row
//   Invoice: ACME dt. 1-Jan 24HC01713-1S   <- boundary marker, opens a group
//   AB12 | Widget | 10 | ...           <- data row of group 24HC01713-1S
//   Invoice: ACME dt. 2-Jan 24HC01713-2S   <- next marker closes the previous
//   ...
//
// STATE MACHINE: states {awaitingFirstGroup, inGroup}. Each row is classified
// in order: skip rule first, then boundary rule, then data. At most one group
// is open at any time; end of input finalizes the open group.
//
// Malformed input degrades, it never aborts: a marker row without an
// extractable identifier opens a group under a placeholder identifier and
// records a warning; data rows ahead of the first marker are discarded with a
// warning, or attributed to an implicit preamble group when the run is
// configured that way.
//
// =============================================================================

package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/importdesk/shipcheck/internal/logging"
	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// RULES
// =============================================================================

// BoundaryRule recognizes marker rows and extracts the group identifier.
type BoundaryRule struct {
	// Marker matches the joined cell text of a boundary row,
	// e.g. `(?i)Invoice:`.
	Marker *regexp.Regexp

	// Identifier extracts the group identifier from the row text,
	// e.g. `\d+HC\d+-\d+[A-Z]*` for invoice numbers like "24HC01713-1S".
	// If the pattern has a capture group, the first group is used; otherwise
	// the whole match.
	Identifier *regexp.Regexp

	// Placeholder is the identifier stem used when extraction fails.
	Placeholder string
}

// SkipRule classifies preamble and noise rows that belong to no group.
type SkipRule struct {
	// Patterns match the joined cell text of rows to discard,
	// e.g. `Job No SI/M`, `BL No\.`, `Port Of Loading`.
	Patterns []*regexp.Regexp
}

// matches reports whether the row text matches any skip pattern.
func (r SkipRule) matches(text string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// HeaderRule locates the shared header row: the first row whose cells
// contain at least MinMatches of the expected column tokens.
type HeaderRule struct {
	// Tokens are expected header fragments, e.g. "P/N", "Desc", "HSN".
	// Matching is case-insensitive substring containment per cell.
	Tokens []string

	// MinMatches is how many tokens must be present. Zero means all.
	MinMatches int
}

// matches reports whether the cells form a header row under the rule.
func (r HeaderRule) matches(cells []string) bool {
	need := r.MinMatches
	if need <= 0 {
		need = len(r.Tokens)
	}
	found := 0
	for _, tok := range r.Tokens {
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

// PreamblePolicy decides what happens to data rows ahead of the first
// boundary marker.
type PreamblePolicy string

const (
	// PreambleDiscard records a warning per row and drops the row.
	PreambleDiscard PreamblePolicy = "discard"

	// PreambleGroup attributes such rows to an implicit preamble group.
	PreambleGroup PreamblePolicy = "group"
)

// Options bundles the rules for one segmentation run.
type Options struct {
	Boundary BoundaryRule
	Skip     SkipRule
	Header   HeaderRule

	// Preamble selects the policy for data ahead of the first marker.
	// Defaults to PreambleDiscard.
	Preamble PreamblePolicy

	// PreambleName is the identifier of the implicit preamble group under
	// PreambleGroup. Defaults to "PREAMBLE".
	PreambleName string
}

// =============================================================================
// GROUPS
// =============================================================================

// Group is one detected sub-table: the rows between two boundary markers,
// under the shared header schema.
type Group struct {
	// ID is the identifier extracted from the marker row, unaltered.
	ID string

	// SheetName is the sanitized form of ID, valid as a workbook tab name.
	SheetName string

	// Header is the shared header schema, byte-identical across all groups
	// of one run.
	Header []string

	// Rows are the data rows attributed to the group, in input order.
	Rows []table.Row

	// MarkerRow is the 1-based source row number of the opening marker,
	// or 0 for the implicit preamble group.
	MarkerRow int
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine segments flat row sequences into invoice groups.
type Engine struct {
	log logging.Logger
}

// New creates a segmentation engine.
func New(log logging.Logger) *Engine {
	return &Engine{log: log}
}

// state is the segmentation state machine state.
type state int

const (
	awaitingFirstGroup state = iota
	inGroup
)

// Segment partitions the raw rows of one sheet into groups. rows are the
// sheet's cell rows in order; row numbers in findings are 1-based positions
// within rows. Findings and warnings accumulate into rep; segmentation
// itself never fails.
func (e *Engine) Segment(sheetName string, rows [][]string, opts Options, rep *report.Report) []Group {
	if opts.Preamble == "" {
		opts.Preamble = PreambleDiscard
	}
	if opts.PreambleName == "" {
		opts.PreambleName = "PREAMBLE"
	}

	// The header schema is established once, outside the state machine, and
	// attached identically to every emitted group.
	header, headerRow := e.findHeader(sheetName, rows, opts.Header, rep)

	var (
		groups   []Group
		current  *Group
		st       = awaitingFirstGroup
		boundary int // ordinal of the current marker, for placeholder ids
	)

	closeCurrent := func() {
		if current != nil {
			e.log.Debug("Closing group %q with %d row(s)", current.ID, len(current.Rows))
			groups = append(groups, *current)
			current = nil
		}
	}

	for i, cells := range rows {
		number := i + 1
		if number == headerRow {
			continue
		}
		text := rowText(cells)

		// Fully empty rows ahead of the first group are framing, not data.
		// Inside a group they are kept: exports use blank rows as visual
		// separators within an invoice, and dropping them would misstate
		// the invoice's row span.
		if text == "" {
			if st == inGroup {
				current.Rows = append(current.Rows, makeRow(number, header, cells))
			}
			continue
		}

		if opts.Skip.matches(text) {
			e.log.Debug("Skipping row %d: %s", number, text)
			continue
		}

		if opts.Boundary.Marker != nil && opts.Boundary.Marker.MatchString(text) {
			boundary++
			closeCurrent()
			id, ok := extractIdentifier(text, opts.Boundary.Identifier)
			if !ok {
				id = fmt.Sprintf("%s-%d", opts.Boundary.Placeholder, boundary)
				e.log.Warn("Boundary row %d has no extractable identifier, using %q", number, id)
				rep.Add(report.Finding{
					Kind:   report.KindMalformedBoundary,
					Sheet:  sheetName,
					Row:    number,
					Detail: text,
				})
			}
			current = e.newGroup(sheetName, id, header, number, rep)
			st = inGroup
			continue
		}

		// Ordinary data row.
		if st == inGroup {
			current.Rows = append(current.Rows, makeRow(number, header, cells))
			continue
		}
		switch opts.Preamble {
		case PreambleGroup:
			current = e.newGroup(sheetName, opts.PreambleName, header, 0, rep)
			current.MarkerRow = 0
			current.Rows = append(current.Rows, makeRow(number, header, cells))
			st = inGroup
		default:
			rep.Add(report.Finding{
				Kind:   report.KindDataBeforeBoundary,
				Sheet:  sheetName,
				Row:    number,
				Detail: text,
			})
		}
	}

	closeCurrent()
	return groups
}

// newGroup opens a group, sanitizing the identifier into a sheet name and
// recording a warning when sanitization altered it.
func (e *Engine) newGroup(sheetName, id string, header []string, markerRow int, rep *report.Report) *Group {
	name := SanitizeSheetName(id)
	if name != id {
		rep.Add(report.Finding{
			Kind:   report.KindSanitizedName,
			Sheet:  sheetName,
			Row:    markerRow,
			Key:    id,
			Detail: name,
		})
	}
	return &Group{
		ID:        id,
		SheetName: name,
		Header:    header,
		MarkerRow: markerRow,
	}
}

// findHeader locates the shared header row. When no row matches the header
// rule, a warning is recorded and positional column names are synthesized
// from the widest row, so segmentation still proceeds.
func (e *Engine) findHeader(sheetName string, rows [][]string, rule HeaderRule, rep *report.Report) ([]string, int) {
	for i, cells := range rows {
		if rule.matches(cells) {
			header := make([]string, len(cells))
			for j, c := range cells {
				header[j] = strings.TrimSpace(c)
			}
			e.log.Debug("Header row found at row %d: %v", i+1, header)
			return header, i + 1
		}
	}

	width := 0
	for _, cells := range rows {
		if len(cells) > width {
			width = len(cells)
		}
	}
	header := make([]string, width)
	for j := range header {
		header[j] = fmt.Sprintf("Column %d", j+1)
	}
	e.log.Warn("No header row detected in %q, using positional column names", sheetName)
	rep.Add(report.Finding{
		Kind:   report.KindMissingHeader,
		Sheet:  sheetName,
		Detail: "no row matched the configured header tokens",
	})
	return header, 0
}

// makeRow maps positional cells onto the header schema. Cells beyond the
// header width are dropped.
func makeRow(number int, header []string, cells []string) table.Row {
	row := table.Row{Number: number, Cells: make(map[string]string, len(header))}
	for j, name := range header {
		if j < len(cells) {
			row.Cells[name] = cells[j]
		}
	}
	return row
}

// rowText joins the non-empty cells of a row for pattern matching.
func rowText(cells []string) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if s := strings.TrimSpace(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// extractIdentifier applies the identifier pattern to the marker row text.
func extractIdentifier(text string, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil {
		return "", false
	}
	m := pattern.FindStringSubmatch(text)
	switch {
	case m == nil:
		return "", false
	case len(m) > 1 && m[1] != "":
		return m[1], true
	default:
		return m[0], true
	}
}
