// =============================================================================
// shipcheck - Field Comparator
// =============================================================================
//
// The comparator checks a declared set of field pairs between two matched
// rows and produces a per-field verdict. It is a pure function: it never
// looks beyond the two supplied rows and has no side effects.
//
// COMPARISON RULES:
//   - values are trimmed and internal whitespace runs collapse to one space
//   - text comparison is case-insensitive
//   - when both sides parse as decimal numbers, they are compared within a
//     configurable absolute tolerance (default 0, exact match)
//   - a numeric parse failure on either side degrades the pair to a text
//     comparison; it is never an error
//
// =============================================================================

package reconcile

import (
	"math"

	"github.com/importdesk/shipcheck/internal/table"
)

// =============================================================================
// FIELD PAIRS AND VERDICTS
// =============================================================================

// FieldPair names one column in the primary table and its counterpart column
// in a reference table. The names may differ; the pairing is explicit
// configuration, never inferred.
type FieldPair struct {
	// Primary is the column name in the primary table.
	Primary string `yaml:"primary"`

	// Reference is the corresponding column name in the reference table.
	Reference string `yaml:"reference"`
}

// Verdict is the outcome of comparing one field pair.
type Verdict string

const (
	// VerdictMatch means the normalized values are equal.
	VerdictMatch Verdict = "match"

	// VerdictMismatch means both sides carry a value and the normalized
	// values differ.
	VerdictMismatch Verdict = "mismatch"

	// VerdictMissingPrimary means the primary field is empty while the
	// reference field carries a value.
	VerdictMissingPrimary Verdict = "missing_primary"

	// VerdictMissingReference means the reference field is empty while the
	// primary field carries a value.
	VerdictMissingReference Verdict = "missing_reference"
)

// FieldVerdict is the comparison result for one field pair.
type FieldVerdict struct {
	// Pair is the field pair that was compared.
	Pair FieldPair

	// Verdict classifies the outcome.
	Verdict Verdict

	// PrimaryValue and ReferenceValue are the raw cell values, kept
	// unnormalized so reports show what the documents actually contain.
	PrimaryValue   string
	ReferenceValue string
}

// =============================================================================
// COMPARATOR
// =============================================================================

// Compare checks every field pair between a primary row and its matched
// reference row. Verdicts are returned in pair order, one per pair.
func Compare(primary, reference table.Row, pairs []FieldPair, tolerance float64) []FieldVerdict {
	verdicts := make([]FieldVerdict, 0, len(pairs))
	for _, pair := range pairs {
		pv := primary.Get(pair.Primary)
		rv := reference.Get(pair.Reference)
		verdicts = append(verdicts, FieldVerdict{
			Pair:           pair,
			Verdict:        compareValues(pv, rv, tolerance),
			PrimaryValue:   pv,
			ReferenceValue: rv,
		})
	}
	return verdicts
}

// compareValues compares two cell values under the normalization rules.
func compareValues(primary, reference string, tolerance float64) Verdict {
	pn := table.NormalizeText(primary)
	rn := table.NormalizeText(reference)

	// Two empty cells agree; one empty cell is a missing value, not a
	// mismatch, so the report can distinguish incomplete data from wrong
	// data.
	switch {
	case pn == "" && rn == "":
		return VerdictMatch
	case pn == "":
		return VerdictMissingPrimary
	case rn == "":
		return VerdictMissingReference
	}

	pf, pok := table.ParseNumber(pn)
	rf, rok := table.ParseNumber(rn)
	if pok && rok {
		if math.Abs(pf-rf) <= tolerance {
			return VerdictMatch
		}
		return VerdictMismatch
	}

	if pn == rn {
		return VerdictMatch
	}
	return VerdictMismatch
}
