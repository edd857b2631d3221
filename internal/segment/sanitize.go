// =============================================================================
// shipcheck - Sheet Name Sanitization
// =============================================================================
//
// Workbook tab names may not contain \ / * [ ] : ? and are limited to
// 31 characters. Extracted group identifiers are sanitized here before they
// reach the writer; the engine records a warning whenever sanitization
// altered the identifier.
//
// =============================================================================

package segment

import "strings"

// maxSheetNameLen is the workbook tab name limit.
const maxSheetNameLen = 31

// invalidSheetNameChars are the characters forbidden in tab names.
const invalidSheetNameChars = `\/*[]:?`

// SanitizeSheetName strips forbidden characters from an identifier and
// truncates it to the tab name limit. An identifier that sanitizes to
// nothing becomes "Sheet".
func SanitizeSheetName(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		if strings.ContainsRune(invalidSheetNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	name := b.String()
	if name == "" {
		return "Sheet"
	}
	return TruncateSheetName(name, maxSheetNameLen)
}

// TruncateSheetName shortens a name to at most limit characters. The limit
// counts runes, not bytes; cutting mid-rune would hand the writer an invalid
// name.
func TruncateSheetName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit])
}
