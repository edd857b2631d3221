package segment

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importdesk/shipcheck/internal/logging"
	"github.com/importdesk/shipcheck/internal/report"
)

func testOptions() Options {
	return Options{
		Boundary: BoundaryRule{
			Marker:      regexp.MustCompile(`(?i)Invoice:`),
			Identifier:  regexp.MustCompile(`\d+HC\d+-\d+[A-Z]*`),
			Placeholder: "INVOICE",
		},
		Skip: SkipRule{Patterns: []*regexp.Regexp{
			regexp.MustCompile(`Job No SI/M`),
			regexp.MustCompile(`BL No\.`),
			regexp.MustCompile(`Port Of Loading`),
		}},
		Header: HeaderRule{
			Tokens:     []string{"P/N", "Desc", "Qty"},
			MinMatches: 2,
		},
	}
}

func TestSegment_TwoGroups(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Job No SI/M 12345"},
		{"P/N", "Desc", "Qty"},
		{"Invoice: ACME dt. 1-Jan 24HC01713-1S"},
		{"AB12", "Widget", "10"},
		{"CD34", "Bolt", "5"},
		{},
		{"Invoice: ACME dt. 2-Jan 24HC01713-2S"},
		{"EF56", "Nut", "2"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

	require.Len(t, groups, 2)

	assert.Equal(t, "24HC01713-1S", groups[0].ID)
	assert.Equal(t, 3, groups[0].MarkerRow)
	require.Len(t, groups[0].Rows, 3)
	assert.Equal(t, "AB12", groups[0].Rows[0].Get("P/N"))
	assert.Equal(t, 4, groups[0].Rows[0].Number)
	assert.Equal(t, 5, groups[0].Rows[1].Number)
	assert.True(t, groups[0].Rows[2].IsEmpty(), "blank separator rows inside an invoice are kept")

	assert.Equal(t, "24HC01713-2S", groups[1].ID)
	require.Len(t, groups[1].Rows, 1)
	assert.Equal(t, "Nut", groups[1].Rows[0].Get("Desc"))

	// Both groups carry the shared header schema.
	assert.Equal(t, []string{"P/N", "Desc", "Qty"}, groups[0].Header)
	assert.Equal(t, groups[0].Header, groups[1].Header)

	assert.Empty(t, rep.Findings())
}

// Every non-empty, non-marker, non-skipped data row belongs to exactly one
// group once the first boundary has been seen.
func TestSegment_CoversEveryDataRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"P/N", "Desc", "Qty"},
		{"Invoice: 24HC00001-1S"},
		{"A1", "x", "1"},
		{"A2", "x", "1"},
		{"BL No. 998877"},
		{"A3", "x", "1"},
		{"Invoice: 24HC00001-2S"},
		{"B1", "x", "1"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

	total := 0
	for _, g := range groups {
		total += len(g.Rows)
	}
	assert.Equal(t, 4, total, "skip and marker rows belong to no group, everything else to exactly one")
}

func TestSegment_MalformedBoundary(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"P/N", "Desc", "Qty"},
		{"Invoice: ACME dt. 1-Jan"}, // marker without an invoice number
		{"A1", "x", "1"},
		{"Invoice: no number here either"},
		{"B1", "x", "1"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

	require.Len(t, groups, 2)
	assert.Equal(t, "INVOICE-1", groups[0].ID, "placeholder ids are numbered so tabs never collide")
	assert.Equal(t, "INVOICE-2", groups[1].ID)
	require.Len(t, groups[0].Rows, 1)

	malformed := rep.ByKind(report.KindMalformedBoundary)
	require.Len(t, malformed, 2)
	assert.Equal(t, 2, malformed[0].Row)
	assert.Contains(t, malformed[0].Detail, "Invoice:")
}

func TestSegment_DataBeforeFirstBoundary(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"P/N", "Desc", "Qty"},
		{"ORPHAN", "stray row", "1"},
		{"Invoice: 24HC00001-1S"},
		{"A1", "x", "1"},
	}

	t.Run("discard policy", func(t *testing.T) {
		t.Parallel()
		rep := report.New()
		groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Rows, 1)

		dropped := rep.ByKind(report.KindDataBeforeBoundary)
		require.Len(t, dropped, 1)
		assert.Equal(t, 2, dropped[0].Row)
	})

	t.Run("preamble group policy", func(t *testing.T) {
		t.Parallel()
		opts := testOptions()
		opts.Preamble = PreambleGroup
		opts.PreambleName = "PREAMBLE"

		rep := report.New()
		groups := New(logging.Nop{}).Segment("Sheet1", rows, opts, rep)

		require.Len(t, groups, 2)
		assert.Equal(t, "PREAMBLE", groups[0].ID)
		assert.Zero(t, groups[0].MarkerRow)
		require.Len(t, groups[0].Rows, 1)
		assert.Equal(t, "ORPHAN", groups[0].Rows[0].Get("P/N"))

		assert.Empty(t, rep.ByKind(report.KindDataBeforeBoundary))
	})
}

func TestSegment_NoHeaderRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Invoice: 24HC00001-1S"},
		{"A1", "x", "1"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, groups[0].Header)
	require.Len(t, groups[0].Rows, 1)
	assert.Equal(t, "A1", groups[0].Rows[0].Get("Column 1"))

	require.Len(t, rep.ByKind(report.KindMissingHeader), 1)
}

func TestSegment_SanitizedIdentifier(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Boundary.Identifier = regexp.MustCompile(`INV/[\d-]+`)

	rows := [][]string{
		{"P/N", "Desc", "Qty"},
		{"Invoice: INV/2024-001"},
		{"A1", "x", "1"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, opts, rep)

	require.Len(t, groups, 1)
	assert.Equal(t, "INV/2024-001", groups[0].ID, "the raw identifier is preserved on the group")
	assert.Equal(t, "INV2024-001", groups[0].SheetName)

	sanitized := rep.ByKind(report.KindSanitizedName)
	require.Len(t, sanitized, 1)
	assert.Equal(t, "INV/2024-001", sanitized[0].Key)
	assert.Equal(t, "INV2024-001", sanitized[0].Detail)
}

func TestSegment_BlankRowHandling(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{""},
		{"P/N", "Desc", "Qty"},
		{"", "", ""},
		{"Invoice: 24HC00001-1S"},
		{"A1", "x", "1"},
		{"", "", ""},
		{"A2", "x", "1"},
	}

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", rows, testOptions(), rep)

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 3, "blank rows inside the invoice are kept in place")
	assert.Equal(t, "A1", groups[0].Rows[0].Get("P/N"))
	assert.True(t, groups[0].Rows[1].IsEmpty())
	assert.Equal(t, "A2", groups[0].Rows[2].Get("P/N"))

	// Blank rows ahead of the first boundary are framing: silently dropped,
	// not reported as stray data.
	assert.Empty(t, rep.ByKind(report.KindDataBeforeBoundary))
}

func TestSegment_EmptyInput(t *testing.T) {
	t.Parallel()

	rep := report.New()
	groups := New(logging.Nop{}).Segment("Sheet1", nil, testOptions(), rep)

	assert.Empty(t, groups)
}

func TestSegment_IdentifierCaptureGroup(t *testing.T) {
	t.Parallel()

	id, ok := extractIdentifier("Invoice: ref=24HC01713-1S end", regexp.MustCompile(`ref=(\S+)`))
	require.True(t, ok)
	assert.Equal(t, "24HC01713-1S", id)

	_, ok = extractIdentifier("Invoice:", regexp.MustCompile(`\d+HC\d+`))
	assert.False(t, ok)

	_, ok = extractIdentifier("anything", nil)
	assert.False(t, ok)
}
