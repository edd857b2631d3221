package xlsxio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/importdesk/shipcheck/internal/report"
	"github.com/importdesk/shipcheck/internal/segment"
	"github.com/importdesk/shipcheck/internal/table"
)

func sampleGroups() []segment.Group {
	header := []string{"P/N", "Desc", "Qty"}
	return []segment.Group{
		{
			ID:        "24HC01713-1S",
			SheetName: "24HC01713-1S",
			Header:    header,
			Rows: []table.Row{
				{Number: 4, Cells: map[string]string{"P/N": "0012", "Desc": "Widget", "Qty": "10"}},
				{Number: 5, Cells: map[string]string{"P/N": "CD34", "Desc": "Bolt", "Qty": "5"}},
			},
		},
		{
			ID:        "24HC01713-2S",
			SheetName: "24HC01713-2S",
			Header:    header,
			Rows: []table.Row{
				{Number: 7, Cells: map[string]string{"P/N": "EF56", "Desc": "Nut", "Qty": "2"}},
			},
		},
	}
}

func TestWriteGroups(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "segmented.xlsx")
	require.NoError(t, WriteGroups(path, sampleGroups(), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"24HC01713-1S", "24HC01713-2S"}, f.GetSheetList(), "default sheet is removed")

	rows, err := f.GetRows("24HC01713-1S")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"P/N", "Desc", "Qty"}, rows[0])
	assert.Equal(t, "0012", rows[1][0], "part numbers with leading zeros stay text")
	assert.Equal(t, "10", rows[1][2])

	rows, err = f.GetRows("24HC01713-2S")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nut", rows[1][1])
}

func TestWriteGroups_KeepColumns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "segmented.xlsx")
	require.NoError(t, WriteGroups(path, sampleGroups(), []string{"Qty", "P/N", "Missing"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("24HC01713-1S")
	require.NoError(t, err)
	assert.Equal(t, []string{"Qty", "P/N"}, rows[0], "keep list reorders and drops unknown columns")
	assert.Equal(t, "0012", rows[1][1])
}

func TestWriteGroups_GroupNamedSheet1(t *testing.T) {
	t.Parallel()

	groups := []segment.Group{{
		ID:        "Sheet1",
		SheetName: "Sheet1",
		Header:    []string{"P/N"},
		Rows:      []table.Row{{Number: 2, Cells: map[string]string{"P/N": "AB12"}}},
	}}

	path := filepath.Join(t.TempDir(), "segmented.xlsx")
	require.NoError(t, WriteGroups(path, groups, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// The group landed on the default sheet's name; its data must survive.
	require.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AB12", rows[1][0])
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	rep := report.New()
	rep.Add(report.Finding{
		Kind:           report.KindMismatch,
		Sheet:          "Invoice-1S",
		Row:            3,
		Reference:      "shipping_list",
		Field:          "Qty",
		PrimaryValue:   "5",
		ReferenceValue: "6",
	})
	rep.Add(report.Finding{
		Kind:          report.KindAmbiguousCounterpart,
		Sheet:         "Invoice-1S",
		Row:           4,
		Reference:     "shipping_list",
		Key:           "AB12",
		CandidateRows: []int{2, 9},
	})
	rep.AddRowProcessed()
	rep.AddRowProcessed()
	rep.AddFieldsChecked(2)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, rep))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	list := f.GetSheetList()
	require.Len(t, list, 3)
	assert.Equal(t, "Summary", list[0])
	assert.Contains(t, list, "mismatch")
	assert.Contains(t, list, "ambiguous_counterpart")

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, summary)
	assert.Equal(t, []string{"Item", "Value"}, summary[0])
	assert.Equal(t, []string{"Run ID", rep.RunID}, summary[1])
	assert.Equal(t, []string{"Rows Processed", "2"}, summary[2])
	assert.Equal(t, []string{"Fields Checked", "2"}, summary[3])
	assert.Equal(t, []string{"Total Findings", "2"}, summary[4])

	mismatches, err := f.GetRows("mismatch")
	require.NoError(t, err)
	require.Len(t, mismatches, 2)
	assert.Equal(t, reportHeader, mismatches[0])
	assert.Equal(t, "Invoice-1S", mismatches[1][0])
	assert.Equal(t, "3", mismatches[1][1])
	assert.Equal(t, "Qty", mismatches[1][3])

	ambiguous, err := f.GetRows("ambiguous_counterpart")
	require.NoError(t, err)
	require.Len(t, ambiguous, 2)
	assert.Equal(t, "AB12", ambiguous[1][6])
	assert.Equal(t, "2, 9", ambiguous[1][7])
}

func TestWriteReport_NoFindings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, report.New()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary"}, f.GetSheetList())
}

func TestOutputColumns(t *testing.T) {
	t.Parallel()

	header := []string{"A", "B", "C"}
	assert.Equal(t, header, outputColumns(header, nil))
	assert.Equal(t, []string{"C", "A"}, outputColumns(header, []string{"C", "A", "Z"}))
	assert.Empty(t, outputColumns(header, []string{"Z"}))
}
