// =============================================================================
// shipcheck - Findings Report
// =============================================================================
//
// This package defines the report accumulated by the reconciliation and
// segmentation engines. A Finding is one reportable outcome; it is produced,
// appended, and never mutated. The report preserves append order, so two runs
// over the same inputs produce identically ordered reports.
//
// Findings never abort processing. The taxonomy the engines follow:
//   - fatal:        a workbook cannot be loaded at all (surfaced as an error
//                   by the xlsxio loader, not recorded here)
//   - structural:   a sheet is missing or its header cannot be found; the
//                   affected sheet is skipped, the run continues
//   - record-level: everything else; always recorded, never aborts anything
//
// =============================================================================

package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// FINDING KINDS
// =============================================================================

// Kind classifies a finding.
type Kind string

const (
	// KindMismatch is a field whose normalized primary and reference values
	// differ, including one side being empty.
	KindMismatch Kind = "mismatch"

	// KindMissingCounterpart is a keyed primary row with no counterpart in a
	// reference table.
	KindMissingCounterpart Kind = "missing_counterpart"

	// KindAmbiguousCounterpart is a primary row whose key matches more than
	// one reference row. No comparison is attempted; the engine does not
	// guess which counterpart to use.
	KindAmbiguousCounterpart Kind = "ambiguous_counterpart"

	// KindUnkeyedRow is a primary row whose key columns are all empty.
	KindUnkeyedRow Kind = "unkeyed_row"

	// KindMissingSheet is a primary sheet with no same-named sheet in a
	// reference workbook. The sheet is skipped for that reference.
	KindMissingSheet Kind = "missing_sheet"

	// KindMissingHeader is a sheet in which no header row could be located.
	KindMissingHeader Kind = "missing_header"

	// KindMalformedBoundary is a boundary marker row from which no invoice
	// identifier could be extracted.
	KindMalformedBoundary Kind = "malformed_boundary"

	// KindDataBeforeBoundary is a data row encountered before the first
	// boundary marker.
	KindDataBeforeBoundary Kind = "data_before_first_boundary"

	// KindSanitizedName is a group identifier that had to be altered to form
	// a valid sheet name.
	KindSanitizedName Kind = "sanitized_name"
)

// Kinds lists every finding kind in report order.
var Kinds = []Kind{
	KindMismatch,
	KindMissingCounterpart,
	KindAmbiguousCounterpart,
	KindUnkeyedRow,
	KindMissingSheet,
	KindMissingHeader,
	KindMalformedBoundary,
	KindDataBeforeBoundary,
	KindSanitizedName,
}

// =============================================================================
// FINDING
// =============================================================================

// Finding is one reportable outcome of reconciliation or segmentation.
// Only the fields relevant to the finding's kind are populated.
type Finding struct {
	// Kind classifies the finding.
	Kind Kind

	// Sheet is the primary sheet (reconciliation) or source sheet
	// (segmentation) the finding refers to.
	Sheet string

	// Row is the 1-based source row number, or 0 for sheet-level findings.
	Row int

	// Reference names the reference table the finding was produced against.
	// Empty for segmentation findings.
	Reference string

	// Field and the two values are set for mismatch findings.
	Field          string
	PrimaryValue   string
	ReferenceValue string

	// Key is the attempted lookup key for missing counterpart findings.
	Key string

	// CandidateRows lists the reference row numbers sharing the key for
	// ambiguous counterpart findings.
	CandidateRows []int

	// Detail carries free-form context, such as the raw marker text of a
	// malformed boundary.
	Detail string
}

// String renders the finding as a single log-friendly line.
func (f Finding) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] sheet=%q", f.Kind, f.Sheet)
	if f.Row > 0 {
		fmt.Fprintf(&b, " row=%d", f.Row)
	}
	if f.Reference != "" {
		fmt.Fprintf(&b, " reference=%q", f.Reference)
	}
	if f.Field != "" {
		fmt.Fprintf(&b, " field=%q primary=%q reference=%q", f.Field, f.PrimaryValue, f.ReferenceValue)
	}
	if f.Key != "" {
		fmt.Fprintf(&b, " key=%q", f.Key)
	}
	if len(f.CandidateRows) > 0 {
		fmt.Fprintf(&b, " candidates=%v", f.CandidateRows)
	}
	if f.Detail != "" {
		fmt.Fprintf(&b, " detail=%q", f.Detail)
	}
	return b.String()
}

// =============================================================================
// REPORT
// =============================================================================

// Report accumulates findings for one run. It is not safe for concurrent use;
// the pipeline is single-threaded by design.
type Report struct {
	// RunID identifies this run in output file names and logs.
	RunID string

	findings      []Finding
	fieldsChecked int
	rowsProcessed int
}

// New creates an empty report with a fresh run identifier.
func New() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Add appends one finding.
func (r *Report) Add(f Finding) {
	r.findings = append(r.findings, f)
}

// AddFieldsChecked records how many field comparisons were performed for a
// row, so the report can audit completeness even though clean matches are
// not recorded as findings.
func (r *Report) AddFieldsChecked(n int) {
	r.fieldsChecked += n
}

// AddRowProcessed counts one primary row as fully processed.
func (r *Report) AddRowProcessed() {
	r.rowsProcessed = r.rowsProcessed + 1
}

// Findings returns all findings in append order.
func (r *Report) Findings() []Finding {
	return r.findings
}

// ByKind returns the findings of one kind, preserving append order.
func (r *Report) ByKind(kind Kind) []Finding {
	var out []Finding
	for _, f := range r.findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary holds the per-kind counts and audit totals of a run.
type Summary struct {
	// RunID identifies the run the summary belongs to.
	RunID string

	// Counts maps each finding kind to its number of occurrences.
	Counts map[Kind]int

	// TotalFindings is the overall number of findings.
	TotalFindings int

	// RowsProcessed is the number of primary rows processed.
	RowsProcessed int

	// FieldsChecked is the total number of field comparisons performed.
	FieldsChecked int
}

// Summarize computes the summary of the report.
func (r *Report) Summarize() Summary {
	s := Summary{
		RunID:         r.RunID,
		Counts:        make(map[Kind]int, len(Kinds)),
		TotalFindings: len(r.findings),
		RowsProcessed: r.rowsProcessed,
		FieldsChecked: r.fieldsChecked,
	}
	for _, f := range r.findings {
		s.Counts[f.Kind]++
	}
	return s
}
