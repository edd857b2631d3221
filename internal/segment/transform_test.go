package segment

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importdesk/shipcheck/internal/table"
)

func testTransform() *Transform {
	return &Transform{
		DescriptionColumn: "Desc",
		SplitMarker:       "-PART NO",
		ModelPattern:      regexp.MustCompile(`(?i)MODEL NO\.?\s*([\w.-]+?)(?:\s*$|-\s*$)`),
		ModelColumn:       "Model Nos.",
		ItemNumberColumn:  "Item Nos.",
		CategoryColumn:    "Category",
		RenameColumns: map[string]string{
			"Desc":     "Description",
			"HSN":      "India HS code",
			"Category": "Item name",
			"Qty":      "Quantity PCS",
		},
		FrontColumns: []string{"Item Nos.", "Model Nos.", "P/N", "Description"},
	}
}

func TestTransform_Apply(t *testing.T) {
	t.Parallel()

	g := Group{
		ID:        "24HC01713-1S",
		SheetName: "24HC01713-1S",
		Header:    []string{"P/N", "Desc", "Category", "Qty", "HSN"},
		Rows: []table.Row{
			{Number: 4, Cells: map[string]string{
				"P/N":      "AB12",
				"Desc":     "BALL VALVE-BRASS-PART NO AB12 MODEL NO. BV-200",
				"Category": "old",
				"Qty":      "10",
				"HSN":      "848180",
			}},
			{Number: 5, Cells: map[string]string{
				"P/N":      "CD34",
				"Desc":     "GASKET +OR- 0.5MM",
				"Category": "old",
				"Qty":      "5",
				"HSN":      "848190",
			}},
		},
	}

	out := testTransform().Apply(g)

	assert.Equal(t,
		[]string{"Item Nos.", "Model Nos.", "P/N", "Description", "Item name", "Quantity PCS", "India HS code"},
		out.Header, "front columns lead, renamed columns follow in source order")

	require.Len(t, out.Rows, 2)

	first := out.Rows[0]
	assert.Equal(t, "1", first.Get("Item Nos."))
	assert.Equal(t, "BALL VALVE-BRASS", first.Get("Description"), "the part number tail is cut off")
	assert.Equal(t, "BV-200", first.Get("Model Nos."))
	assert.Equal(t, "BALL VALVE", first.Get("Item name"), "item name is the description before its first hyphen")
	assert.Equal(t, "10", first.Get("Quantity PCS"))
	assert.Equal(t, "848180", first.Get("India HS code"))
	assert.Equal(t, 4, first.Number, "source row numbers survive the rewrite")

	second := out.Rows[1]
	assert.Equal(t, "2", second.Get("Item Nos."))
	assert.Equal(t, "GASKET±0.5MM", second.Get("Description"), "tolerance text is normalized, surrounding spaces consumed")
	assert.Empty(t, second.Get("Model Nos."), "no model tail, no model number")
	assert.Equal(t, "GASKET±0.5MM", second.Get("Item name"))
}

func TestTransform_SplitDescription(t *testing.T) {
	t.Parallel()

	tr := testTransform()

	tests := []struct {
		name      string
		desc      string
		wantBase  string
		wantModel string
	}{
		{
			name:      "marker and model",
			desc:      "STEEL BRACKET-PART NO SB99 MODEL NO. X-12",
			wantBase:  "STEEL BRACKET",
			wantModel: "X-12",
		},
		{
			name:      "marker matched case-insensitively",
			desc:      "Widget-part no W1 model no. M7",
			wantBase:  "Widget",
			wantModel: "M7",
		},
		{
			name:     "no marker leaves the description whole",
			desc:     "PLAIN WASHER",
			wantBase: "PLAIN WASHER",
		},
		{
			name:     "trailing hyphen trimmed after the cut",
			desc:     "VALVE SEAT - -PART NO VS1",
			wantBase: "VALVE SEAT",
		},
		{
			name:     "plus-minus rewritten",
			desc:     "SHIM +OR- 0.1MM",
			wantBase: "SHIM±0.1MM",
		},
		{
			name:     "multibyte text ahead of the marker",
			desc:     "阀门-BRASS-part no V1",
			wantBase: "阀门-BRASS",
		},
		{
			name:      "model without marker still extracted",
			desc:      "PUMP MODEL NO. P-500",
			wantBase:  "PUMP MODEL NO. P-500",
			wantModel: "P-500",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, model := tr.splitDescription(tt.desc)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestTransform_NoDescriptionColumn(t *testing.T) {
	t.Parallel()

	g := Group{
		Header: []string{"P/N", "Qty"},
		Rows:   []table.Row{{Number: 2, Cells: map[string]string{"P/N": "A1", "Qty": "1"}}},
	}

	out := testTransform().Apply(g)
	assert.Equal(t, g.Header, out.Header, "groups without the description column pass through")
	assert.Equal(t, g.Rows, out.Rows)
}

func TestTransform_ItemNumbersRestartPerGroup(t *testing.T) {
	t.Parallel()

	tr := testTransform()
	mk := func(pn string) Group {
		return Group{
			Header: []string{"P/N", "Desc"},
			Rows: []table.Row{
				{Number: 10, Cells: map[string]string{"P/N": pn, "Desc": "A"}},
				{Number: 11, Cells: map[string]string{"P/N": pn, "Desc": "B"}},
			},
		}
	}

	first := tr.Apply(mk("X"))
	second := tr.Apply(mk("Y"))
	assert.Equal(t, "1", first.Rows[0].Get("Item Nos."))
	assert.Equal(t, "2", first.Rows[1].Get("Item Nos."))
	assert.Equal(t, "1", second.Rows[0].Get("Item Nos."), "numbering restarts with every group")
}

func TestFrontOrder(t *testing.T) {
	t.Parallel()

	header := []string{"A", "B", "C", "D"}
	assert.Equal(t, header, frontOrder(header, nil))
	assert.Equal(t, []string{"C", "A", "B", "D"}, frontOrder(header, []string{"C", "A", "Z"}))
	assert.Equal(t, []string{"C", "A", "B", "D"}, frontOrder(header, []string{"C", "C", "A"}))
}
