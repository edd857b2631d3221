// =============================================================================
// shipcheck - Reconciliation Engine
// =============================================================================
//
// The engine validates each row of a primary workbook against its uniquely
// keyed counterpart row in every configured reference workbook. Every
// reference is governed by its own Rule: which columns form the key on each
// side, how the key is normalized, and which field pairs must agree.
//
// PIPELINE, per primary sheet:
//   1. Locate the same-named sheet in each reference workbook. Sheet names
//      are compared after normalization (non-alphanumerics stripped,
//      lowercased), so "Invoice-1S", "invoice 1s" and "INVOICE_1S" pair up.
//      A missing sheet yields one missing_sheet finding and that reference
//      is skipped for the sheet.
//   2. Build one KeyIndex per located reference sheet.
//   3. Walk the primary rows. Per rule: an empty key is an unkeyed_row
//      finding; zero index hits is a missing_counterpart; more than one hit
//      is an ambiguous_counterpart listing every candidate; exactly one hit
//      runs the field comparator, and each non-match verdict becomes a
//      mismatch finding.
//
// No row-level or rule-level condition ever aborts the run. The engine
// always processes every row of every sheet and accumulates all findings.
//
// =============================================================================

package reconcile

import (
	"strings"
	"unicode"

	"github.com/importdesk/shipcheck/internal/logging"
	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// RULES AND WORKBOOKS
// =============================================================================

// Rule declares how one reference workbook is matched against the primary.
type Rule struct {
	// Name identifies the reference in findings, e.g. "shipping_list".
	Name string

	// PrimaryKeyColumns are the key columns in the primary table.
	PrimaryKeyColumns []string

	// ReferenceKeyColumns are the corresponding key columns in the
	// reference table.
	ReferenceKeyColumns []string

	// KeyNormalization selects how key values are normalized before lookup.
	KeyNormalization table.KeyNormalization

	// Pairs is the ordered list of field pairs to compare once a unique
	// counterpart is found.
	Pairs []FieldPair

	// NumericTolerance is the absolute tolerance for numeric comparisons.
	// Zero means exact match.
	NumericTolerance float64
}

// Workbook is an ordered collection of loaded sheets.
type Workbook struct {
	// Name identifies the source document, usually its file name.
	Name string

	// Sheets are the loaded tables in workbook order.
	Sheets []*table.Table
}

// SheetNamed returns the sheet whose normalized name equals the normalized
// form of name, or nil when no such sheet exists.
func (w *Workbook) SheetNamed(name string) *table.Table {
	want := NormalizeSheetName(name)
	for _, s := range w.Sheets {
		if NormalizeSheetName(s.Name) == want {
			return s
		}
	}
	return nil
}

// NormalizeSheetName standardizes a sheet name for pairing: every rune that
// is not a letter or digit is dropped and the rest is lowercased.
func NormalizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Reference pairs a reference workbook with the rule that governs it.
type Reference struct {
	Rule     Rule
	Workbook *Workbook
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine reconciles a primary workbook against a set of references.
type Engine struct {
	log logging.Logger
}

// New creates a reconciliation engine.
func New(log logging.Logger) *Engine {
	return &Engine{log: log}
}

// refBinding is one reference sheet located for a primary sheet, with its
// index built and ready for lookups.
type refBinding struct {
	rule  Rule
	index *table.KeyIndex
}

// Reconcile validates every sheet of the primary workbook against every
// reference and accumulates findings into rep. The only fatal condition,
// failure to load a workbook, happens before this call; Reconcile itself
// never fails.
func (e *Engine) Reconcile(primary *Workbook, refs []Reference, rep *report.Report) {
	for _, sheet := range primary.Sheets {
		e.reconcileSheet(sheet, refs, rep)
	}
}

// reconcileSheet runs the row loop for one primary sheet.
func (e *Engine) reconcileSheet(sheet *table.Table, refs []Reference, rep *report.Report) {
	e.log.Info("Reconciling sheet %q (%d rows) against %d reference(s)", sheet.Name, sheet.Len(), len(refs))

	// Locate counterpart sheets and build each index exactly once, before
	// any row-level work.
	bindings := make([]refBinding, 0, len(refs))
	for _, ref := range refs {
		refSheet := ref.Workbook.SheetNamed(sheet.Name)
		if refSheet == nil {
			e.log.Warn("Sheet %q not found in reference %q", sheet.Name, ref.Rule.Name)
			rep.Add(report.Finding{
				Kind:      report.KindMissingSheet,
				Sheet:     sheet.Name,
				Reference: ref.Rule.Name,
			})
			continue
		}
		bindings = append(bindings, refBinding{
			rule:  ref.Rule,
			index: table.BuildIndex(refSheet, ref.Rule.ReferenceKeyColumns, ref.Rule.KeyNormalization),
		})
	}

	for _, row := range sheet.Rows {
		for _, b := range bindings {
			e.reconcileRow(sheet.Name, row, b, rep)
		}
		rep.AddRowProcessed()
	}
}

// reconcileRow checks one primary row against one reference. Exactly one of
// the outcome categories is recorded per call: unkeyed row, missing
// counterpart, ambiguous counterpart, or field comparison.
func (e *Engine) reconcileRow(sheetName string, row table.Row, b refBinding, rep *report.Report) {
	key, ok := table.CompositeKey(row, b.rule.PrimaryKeyColumns, b.rule.KeyNormalization)
	if !ok {
		rep.Add(report.Finding{
			Kind:      report.KindUnkeyedRow,
			Sheet:     sheetName,
			Row:       row.Number,
			Reference: b.rule.Name,
		})
		return
	}

	matches := b.index.Lookup(key)
	switch len(matches) {
	case 0:
		rep.Add(report.Finding{
			Kind:      report.KindMissingCounterpart,
			Sheet:     sheetName,
			Row:       row.Number,
			Reference: b.rule.Name,
			Key:       key,
		})
	case 1:
		verdicts := Compare(row, matches[0], b.rule.Pairs, b.rule.NumericTolerance)
		rep.AddFieldsChecked(len(verdicts))
		for _, v := range verdicts {
			if v.Verdict == VerdictMatch {
				continue
			}
			rep.Add(report.Finding{
				Kind:           report.KindMismatch,
				Sheet:          sheetName,
				Row:            row.Number,
				Reference:      b.rule.Name,
				Field:          v.Pair.Primary,
				PrimaryValue:   v.PrimaryValue,
				ReferenceValue: v.ReferenceValue,
				Detail:         string(v.Verdict),
			})
		}
	default:
		candidates := make([]int, 0, len(matches))
		for _, m := range matches {
			candidates = append(candidates, m.Number)
		}
		rep.Add(report.Finding{
			Kind:          report.KindAmbiguousCounterpart,
			Sheet:         sheetName,
			Row:           row.Number,
			Reference:     b.rule.Name,
			Key:           key,
			CandidateRows: candidates,
		})
	}
}
