// =============================================================================
// shipcheck - Value Normalization
// =============================================================================
//
// Normalization rules applied before any comparison or key lookup. The rules
// are deliberately deterministic: there is no similarity scoring anywhere in
// the pipeline. Two values either normalize to the same string or they do not.
//
// Three normal forms exist:
//   - text form:   trimmed, internal whitespace collapsed, case-folded
//   - key form:    text form plus numeric canonicalization ("12.0" == "12")
//   - part-number: uppercased with every non-alphanumeric rune removed
//
// The part-number form mirrors how P/N values appear across shipping
// documents: "AB-12.3", "ab 12.3" and "AB12.3" all identify the same part.
//
// =============================================================================

package table

import (
	"strconv"
	"strings"
	"unicode"
)

// KeyNormalization selects how key column values are normalized before they
// are indexed or looked up.
type KeyNormalization string

const (
	// KeyNormalizeStandard trims, case-folds and canonicalizes numeric text.
	KeyNormalizeStandard KeyNormalization = "standard"

	// KeyNormalizePartNumber uppercases and strips non-alphanumeric runes.
	KeyNormalizePartNumber KeyNormalization = "part_number"
)

// NormalizeText returns the text normal form of a cell value: surrounding
// whitespace trimmed, internal whitespace runs collapsed to a single space,
// and the result lowercased.
func NormalizeText(value string) string {
	fields := strings.Fields(value)
	return strings.ToLower(strings.Join(fields, " "))
}

// NormalizeKey returns the key normal form of a cell value under the given
// normalization mode. Numeric-looking text is canonicalized so that "12",
// "12.0" and " 12 " index under the same key.
func NormalizeKey(value string, mode KeyNormalization) string {
	switch mode {
	case KeyNormalizePartNumber:
		return normalizePartNumber(value)
	default:
		v := NormalizeText(value)
		if canon, ok := CanonicalNumber(v); ok {
			return canon
		}
		return v
	}
}

// normalizePartNumber uppercases the value and removes every rune that is
// not a letter or digit.
func normalizePartNumber(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalNumber parses a value as a decimal number and, on success,
// returns its canonical string form. Thousands separators are not accepted;
// a value like "1,200" stays text.
func CanonicalNumber(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// ParseNumber parses a cell value as a decimal number after trimming.
func ParseNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
