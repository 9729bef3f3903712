package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTenderFirstItemsMapToRows12Through16(t *testing.T) {
	for n, want := range map[int]int{1: 12, 2: 13, 3: 14, 4: 15, 5: 16} {
		row, ok := LookupRow("open tender", n)
		require.True(t, ok, "item %d", n)
		assert.Equal(t, want, row, "item %d", n)
	}
}

func TestLookupRowUnknown(t *testing.T) {
	_, ok := LookupRow(CategoryOpenTender, 99)
	assert.False(t, ok)

	_, ok = LookupRow("Subasta Inversa", 1)
	assert.False(t, ok)

	_, ok = LookupRow(CategoryInteradministrative, 13)
	assert.False(t, ok, "convenio checklist is shorter than the tender one")
}

func TestCategoryAliasesFoldAccentsAndSeparators(t *testing.T) {
	tests := map[string]string{
		"Licitación Pública":            CategoryOpenTender,
		"LICITACION_PUBLICA":            CategoryOpenTender,
		"open-tender":                   CategoryOpenTender,
		"minimum-value":                 CategoryMinimumValue,
		"  Mínima   Cuantía ":           CategoryMinimumValue,
		"Interadministrative Agreement": CategoryInteradministrative,
		"service-provision":             CategoryServiceProvision,
		"Prestación de Servicios":       CategoryServiceProvision,
	}
	for in, want := range tests {
		got, ok := CanonicalCategory(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := CanonicalCategory("Selección Abreviada")
	assert.False(t, ok)
	assert.Equal(t, "Selección Abreviada", got)
}

// Every layout must be internally consistent: rows unique, below the
// header block, and numbered 1..N without gaps.
func TestLayoutsAreWellFormed(t *testing.T) {
	require.Len(t, Categories(), 4)

	for _, name := range Categories() {
		l, ok := LookupLayout(name)
		require.True(t, ok, name)
		assert.Equal(t, name, l.Category)
		assert.NotEmpty(t, l.Sheet)

		seen := map[int]int{}
		numbers := l.Numbers()
		for i, n := range numbers {
			assert.Equal(t, i+1, n, "%s numbering has a gap", name)
			row, _ := l.Row(n)
			assert.Greater(t, row, l.Header.SignedAt.Row, "%s item %d overlaps header", name, n)
			if prev, dup := seen[row]; dup {
				t.Errorf("%s row %d used by items %d and %d", name, row, prev, n)
			}
			seen[row] = n
		}
	}
}

func TestColumnForIsFixedPerAnswer(t *testing.T) {
	col, ok := ColumnFor(Complies)
	assert.True(t, ok)
	assert.Equal(t, ColumnComplies, col)

	col, _ = ColumnFor(DoesNotComply)
	assert.Equal(t, ColumnDoesNotComply, col)

	col, _ = ColumnFor(NotApplicable)
	assert.Equal(t, ColumnNotApplicable, col)

	_, ok = ColumnFor(Unset)
	assert.False(t, ok)
}

func TestCoordinateCell(t *testing.T) {
	c, ok := MarkAt(13, Complies)
	require.True(t, ok)
	name, err := c.Cell()
	require.NoError(t, err)
	assert.Equal(t, "E13", name)

	name, err = ObservationsAt(15).Cell()
	require.NoError(t, err)
	assert.Equal(t, "H15", name)

	_, err = Coordinate{Row: 0, Col: 5}.Cell()
	assert.Error(t, err)
	assert.Equal(t, "R0C5", Coordinate{Row: 0, Col: 5}.String())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "lp-004-2024", Slug("LP-004/2024"))
	assert.Equal(t, "contrato-n-12-ano-2024", Slug("  Contrato Nº 12 (año 2024) "))
	assert.Equal(t, "", Slug("***"))
}
