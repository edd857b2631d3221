package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSheetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean identifier unchanged", in: "24HC01713-1S", want: "24HC01713-1S"},
		{name: "forbidden characters stripped", in: `INV/2024:001?`, want: "INV2024001"},
		{name: "brackets and asterisk stripped", in: `A[1]*B\C`, want: "A1BC"},
		{name: "surrounding whitespace trimmed", in: "  24HC01713-1S  ", want: "24HC01713-1S"},
		{name: "truncated to tab limit", in: strings.Repeat("A", 40), want: strings.Repeat("A", 31)},
		{name: "truncation counts runes not bytes", in: strings.Repeat("货", 40), want: strings.Repeat("货", 31)},
		{name: "empty becomes Sheet", in: "", want: "Sheet"},
		{name: "all forbidden becomes Sheet", in: `\/*[]:?`, want: "Sheet"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeSheetName(tt.in))
		})
	}
}

func TestTruncateSheetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", TruncateSheetName("abc", 31))
	assert.Equal(t, "abc", TruncateSheetName("abcde", 3))

	// Multibyte names must never be cut mid-rune.
	got := TruncateSheetName(strings.Repeat("发票", 20), 31)
	assert.Equal(t, strings.Repeat("发票", 15)+"发", got)
	assert.True(t, utf8.ValidString(got))
}
