package workbook

import (
	"fmt"
	"strings"

	"github.com/farxc/checklist_export/internal/checklist"
	"github.com/farxc/checklist_export/internal/store"
	"github.com/xuri/excelize/v2"
)

// Basic sheet geometry.
const (
	basicTitleRow   = 1
	basicHeaderRow  = 9
	basicFirstEntry = 10
	maxSheetName    = 31
	defaultSheet    = "Sheet1"
	fallbackSheet   = "Checklist"
)

var basicColumns = []struct {
	title string
	width float64
}{
	{"Nº", 6},
	{"Etapa", 22},
	{"Ítem", 70},
	{"Respuesta", 14},
	{"Observaciones", 60},
}

/*
BuildBasic renders a self-contained workbook with no template: one sheet
per section with the contract header block, a table header and one row per
item in item-number order. Observations are normalized the same way the
template writer does.
*/
func BuildBasic(rec *store.Record, sections []*checklist.Section, maxObs int) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if len(sections) == 0 {
		sections = []*checklist.Section{{Category: rec.CategoryName}}
	}

	used := make(map[string]bool, len(sections))
	for i, s := range sections {
		name := uniqueSheetName(sheetName(s), used)
		if i == 0 {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		if err := writeBasicSheet(f, name, bold, rec, s, maxObs); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeBasicSheet(f *excelize.File, sheet string, bold int, rec *store.Record, s *checklist.Section, maxObs int) error {
	title := "LISTA DE CHEQUEO"
	if s.Category != "" {
		title += " - " + strings.ToUpper(s.Category)
	}
	if err := setRow(f, sheet, basicTitleRow, title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}

	header := [][]any{
		{"Número de contrato", rec.ContractNumber},
		{"Contratista", rec.Contractor},
		{"Objeto", rec.Object},
		{"Valor", rec.Value},
		{"Fecha de suscripción", formatDate(rec)},
		{"Categoría", s.Category},
	}
	for i, kv := range header {
		if err := setRow(f, sheet, basicTitleRow+1+i, kv...); err != nil {
			return err
		}
	}

	titles := make([]any, len(basicColumns))
	for i, c := range basicColumns {
		titles[i] = c.title
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, c.width); err != nil {
			return err
		}
	}
	if err := setRow(f, sheet, basicHeaderRow, titles...); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(basicColumns), basicHeaderRow)
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", basicHeaderRow), last, bold); err != nil {
		return err
	}

	for i, e := range s.Entries {
		answer := ""
		if e.Answered() {
			answer = e.Answer.Label()
		}
		if err := setRow(f, sheet, basicFirstEntry+i,
			e.Number, e.Stage, e.Question, answer, NormalizeObservations(e.Observations, maxObs)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func sheetName(s *checklist.Section) string {
	name := s.Sheet
	if name == "" {
		name = s.Category
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return ' '
		}
		return r
	}, name)
	name = strings.Trim(strings.Join(strings.Fields(name), " "), "'")
	if name == "" {
		return fallbackSheet
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
