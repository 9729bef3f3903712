package workbook

import (
	"testing"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBasicWritesHeaderAndOneRowPerItem(t *testing.T) {
	s := tenderSection(t)
	s.Entries[0].Stage = "Precontractual"
	s.Entries[0].Question = "¿Existe estudio previo?"
	rec := &store.Record{ContractNumber: "LP-004-2024", Contractor: "Andinas"}

	f, err := BuildBasic(rec, []*checklist.Section{s}, 0)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"LICITACION"}, f.GetSheetList())
	sheet := "LICITACION"
	assert.Equal(t, "LISTA DE CHEQUEO - LICITACIÓN PÚBLICA", cell(t, f, sheet, "A1"))
	assert.Equal(t, "LP-004-2024", cell(t, f, sheet, "B2"))
	assert.Equal(t, "Andinas", cell(t, f, sheet, "B3"))
	assert.Equal(t, "Nº", cell(t, f, sheet, "A9"))
	assert.Equal(t, "Observaciones", cell(t, f, sheet, "E9"))

	assert.Equal(t, "1", cell(t, f, sheet, "A10"))
	assert.Equal(t, "Precontractual", cell(t, f, sheet, "B10"))
	assert.Equal(t, "¿Existe estudio previo?", cell(t, f, sheet, "C10"))
	assert.Equal(t, "", cell(t, f, sheet, "D10"))
	assert.Equal(t, "Cumple", cell(t, f, sheet, "D11"))
	assert.Equal(t, "No aplica", cell(t, f, sheet, "D13"))
	assert.Equal(t, "No se exige garantía", cell(t, f, sheet, "E13"))
	assert.Equal(t, "5", cell(t, f, sheet, "A14"))
	assert.Equal(t, "", cell(t, f, sheet, "A15"))
}

func TestBuildBasicSheetNames(t *testing.T) {
	rec := &store.Record{CategoryName: "Mínima Cuantía"}
	sections := []*checklist.Section{
		{Category: "A", Sheet: "Hoja: 1/2"},
		{Category: "B", Sheet: "Hoja  1 2"},
		{Category: "Una categoría con un nombre demasiado extenso"},
	}

	f, err := BuildBasic(rec, sections, 0)
	require.NoError(t, err)
	defer f.Close()

	names := f.GetSheetList()
	require.Len(t, names, 3)
	assert.Equal(t, "Hoja 1 2", names[0])
	assert.Equal(t, "Hoja 1 2 (2)", names[1])
	assert.Len(t, []rune(names[2]), maxSheetName)
}

func TestBuildBasicWithoutSections(t *testing.T) {
	f, err := BuildBasic(&store.Record{CategoryName: "Mínima Cuantía"}, nil, 0)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Mínima Cuantía"}, f.GetSheetList())
	assert.Equal(t, "Nº", cell(t, f, "Mínima Cuantía", "A9"))
}
