package workbook

import (
	"strings"
	"testing"
	"time"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func template(t *testing.T, sheet string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	return f
}

func tenderSection(t *testing.T) *checklist.Section {
	t.Helper()
	layout, ok := checklist.LookupLayout(checklist.CategoryOpenTender)
	require.True(t, ok)

	s := &checklist.Section{Category: checklist.CategoryOpenTender, Sheet: layout.Sheet, Layout: layout}
	for n := 1; n <= 5; n++ {
		row, _ := layout.Row(n)
		s.Entries = append(s.Entries, checklist.Entry{Number: n, Row: row, RowSource: checklist.RowTable})
	}
	s.Entries[1].Answer = checklist.Complies
	s.Entries[3].Answer = checklist.NotApplicable
	s.Entries[3].Observations = "No se exige garantía"
	return s
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func answerCells(t *testing.T, f *excelize.File, sheet string, row int) []string {
	t.Helper()
	out := make([]string, 0, 4)
	for col := checklist.ColumnComplies; col <= checklist.ColumnObservations; col++ {
		ref, err := excelize.CoordinatesToCellName(col, row)
		require.NoError(t, err)
		out = append(out, cell(t, f, sheet, ref))
	}
	return out
}

func newWriter() *Writer {
	return NewWriter(config.ExportConfig{Marker: "X", MaxObservationLength: 20}, logger.NewNop())
}

func TestWriteSectionMarksOnlyAnsweredRows(t *testing.T) {
	s := tenderSection(t)
	f := template(t, s.Sheet)

	rep, err := newWriter().WriteSection(f, s.Sheet, s)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Marked)
	assert.Equal(t, 1, rep.Observations)
	assert.Empty(t, rep.Skipped)

	assert.Equal(t, []string{"X", "", "", ""}, answerCells(t, f, s.Sheet, 13))
	assert.Equal(t, []string{"", "", "X", "No se exige garantía"}, answerCells(t, f, s.Sheet, 15))
	for _, row := range []int{12, 14, 16} {
		assert.Equal(t, []string{"", "", "", ""}, answerCells(t, f, s.Sheet, row), "row %d", row)
	}
}

func TestWriteSectionIsOrderIndependentAndIdempotent(t *testing.T) {
	s := tenderSection(t)
	reversed := &checklist.Section{Category: s.Category, Sheet: s.Sheet, Layout: s.Layout}
	for i := len(s.Entries) - 1; i >= 0; i-- {
		reversed.Entries = append(reversed.Entries, s.Entries[i])
	}

	a := template(t, s.Sheet)
	b := template(t, s.Sheet)
	w := newWriter()

	_, err := w.WriteSection(a, s.Sheet, s)
	require.NoError(t, err)
	_, err = w.WriteSection(b, s.Sheet, reversed)
	require.NoError(t, err)
	_, err = w.WriteSection(b, s.Sheet, reversed)
	require.NoError(t, err)

	for row := 12; row <= 16; row++ {
		assert.Equal(t, answerCells(t, a, s.Sheet, row), answerCells(t, b, s.Sheet, row), "row %d", row)
	}
}

func TestWriteSectionSkipsUnresolvedEntries(t *testing.T) {
	s := tenderSection(t)
	s.Entries = append(s.Entries, checklist.Entry{Number: 99, Answer: checklist.DoesNotComply})
	f := template(t, s.Sheet)

	rep, err := newWriter().WriteSection(f, s.Sheet, s)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Marked)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 99, rep.Skipped[0].Item)
	assert.Equal(t, "X", cell(t, f, s.Sheet, "E13"))
}

func TestWriteSectionMissingSheet(t *testing.T) {
	s := tenderSection(t)
	f := template(t, "OTRA")

	_, err := newWriter().WriteSection(f, s.Sheet, s)
	assert.ErrorIs(t, err, ErrSheetMissing)
}

func TestWriteSectionTruncatesObservations(t *testing.T) {
	s := tenderSection(t)
	s.Entries[1].Observations = "  Acta\tde inicio\n\nfirmada por ambas partes  "
	f := template(t, s.Sheet)

	_, err := newWriter().WriteSection(f, s.Sheet, s)
	require.NoError(t, err)
	assert.Equal(t, "Acta de inicio firma", cell(t, f, s.Sheet, "H13"))
}

func TestWriteHeader(t *testing.T) {
	s := tenderSection(t)
	f := template(t, s.Sheet)
	rec := &store.Record{
		ContractNumber: "LP-004-2024",
		Contractor:     "Construcciones Andinas S.A.S.",
		Object:         "Pavimentación vía rural",
		Value:          125000000,
		SignedAt:       time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, newWriter().WriteHeader(f, s.Sheet, s.Layout, rec))
	assert.Equal(t, "LP-004-2024", cell(t, f, s.Sheet, "C5"))
	assert.Equal(t, "Construcciones Andinas S.A.S.", cell(t, f, s.Sheet, "C6"))
	assert.Equal(t, "Pavimentación vía rural", cell(t, f, s.Sheet, "C7"))
	assert.Equal(t, "125000000", cell(t, f, s.Sheet, "C8"))
	assert.Equal(t, "07/03/2024", cell(t, f, s.Sheet, "C9"))
}

func TestNewWriterDefaultsMarker(t *testing.T) {
	w := NewWriter(config.ExportConfig{}, logger.NewNop())
	assert.Equal(t, config.DefaultMarker, w.marker)
}

func TestNormalizeObservations(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"empty", "", 10, ""},
		{"collapse", " a \t b\r\n c ", 0, "a b c"},
		{"controls", "a\x00b\x07c\u200b", 0, "abc"},
		{"nfc", "Cumplio\u0301", 0, "Cumplió"},
		{"rune cut", "ñandú ñandú", 5, "ñandú"},
		{"trailing space after cut", "ab cd", 3, "ab"},
		{"unlimited", strings.Repeat("x", 600), 0, strings.Repeat("x", 600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeObservations(tt.in, tt.limit))
		})
	}
}
