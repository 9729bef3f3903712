package checklist

import (
	"sort"
)

// Canonical category names as stored in categorias.nombre.
const (
	CategoryOpenTender          = "Licitación Pública"
	CategoryMinimumValue        = "Mínima Cuantía"
	CategoryInteradministrative = "Convenio Interadministrativo"
	CategoryServiceProvision    = "Prestación de Servicios"
)

// HeaderCells are the template cells holding the contract identification.
type HeaderCells struct {
	ContractNumber Coordinate
	Contractor     Coordinate
	Object         Coordinate
	Value          Coordinate
	SignedAt       Coordinate
}

// Layout is the positional description of one category's template sheet.
// Rows maps the category-scoped item number to its template row; stage
// banner rows are the gaps between runs.
type Layout struct {
	Category string
	Sheet    string
	Header   HeaderCells
	Rows     map[int]int
}

// Row returns the template row for item number n.
func (l *Layout) Row(n int) (int, bool) {
	if l == nil {
		return 0, false
	}
	row, ok := l.Rows[n]
	return row, ok
}

// Numbers returns the mapped item numbers in ascending order.
func (l *Layout) Numbers() []int {
	out := make([]int, 0, len(l.Rows))
	for n := range l.Rows {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

var standardHeader = HeaderCells{
	ContractNumber: Coordinate{Row: 5, Col: 3},
	Contractor:     Coordinate{Row: 6, Col: 3},
	Object:         Coordinate{Row: 7, Col: 3},
	Value:          Coordinate{Row: 8, Col: 3},
	SignedAt:       Coordinate{Row: 9, Col: 3},
}

// layouts is the only positional table in the codebase. The older
// dashboard assigned different rows to the same tender items; reconciling
// stored fila_excel values against this table is a data-migration task.
var layouts = map[string]*Layout{
	CategoryOpenTender: {
		Category: CategoryOpenTender,
		Sheet:    "LICITACION",
		Header:   standardHeader,
		Rows: map[int]int{
			// Precontractual
			1: 12, 2: 13, 3: 14, 4: 15, 5: 16, 6: 17, 7: 18, 8: 19, 9: 20, 10: 21,
			// Contractual
			11: 23, 12: 24, 13: 25, 14: 26, 15: 27, 16: 28, 17: 29, 18: 30,
			// Ejecución
			19: 32, 20: 33, 21: 34, 22: 35, 23: 36, 24: 37, 25: 38, 26: 39,
		},
	},
	CategoryMinimumValue: {
		Category: CategoryMinimumValue,
		Sheet:    "MINIMA CUANTIA",
		Header:   standardHeader,
		Rows: map[int]int{
			1: 12, 2: 13, 3: 14, 4: 15, 5: 16, 6: 17, 7: 18, 8: 19,
			9: 21, 10: 22, 11: 23, 12: 24, 13: 25, 14: 26,
			15: 28, 16: 29, 17: 30, 18: 31, 19: 32, 20: 33,
		},
	},
	CategoryInteradministrative: {
		Category: CategoryInteradministrative,
		Sheet:    "CONVENIO",
		Header:   standardHeader,
		Rows: map[int]int{
			1: 12, 2: 13, 3: 14, 4: 15, 5: 16,
			6: 18, 7: 19, 8: 20, 9: 21,
			10: 23, 11: 24, 12: 25,
		},
	},
	CategoryServiceProvision: {
		Category: CategoryServiceProvision,
		Sheet:    "PRESTACION SERVICIOS",
		Header:   standardHeader,
		Rows: map[int]int{
			1: 12, 2: 13, 3: 14, 4: 15, 5: 16, 6: 17, 7: 18, 8: 19, 9: 20,
			10: 22, 11: 23, 12: 24, 13: 25, 14: 26, 15: 27,
			16: 29, 17: 30, 18: 31, 19: 32, 20: 33, 21: 34,
		},
	},
}

// Folded spellings accepted for each canonical category.
var categoryAliases = map[string]string{
	"licitacion publica":            CategoryOpenTender,
	"licitacion":                    CategoryOpenTender,
	"open tender":                   CategoryOpenTender,
	"minima cuantia":                CategoryMinimumValue,
	"minimum value":                 CategoryMinimumValue,
	"convenio interadministrativo":  CategoryInteradministrative,
	"convenio":                      CategoryInteradministrative,
	"interadministrative agreement": CategoryInteradministrative,
	"prestacion de servicios":       CategoryServiceProvision,
	"prestacion servicios":          CategoryServiceProvision,
	"service provision":             CategoryServiceProvision,
}

// CanonicalCategory resolves a user supplied category name. Unknown names
// are returned unchanged with ok=false.
func CanonicalCategory(name string) (string, bool) {
	if canon, ok := categoryAliases[fold(name)]; ok {
		return canon, true
	}
	return name, false
}

// LookupLayout returns the layout for a category name or alias.
func LookupLayout(category string) (*Layout, bool) {
	canon, ok := CanonicalCategory(category)
	if !ok {
		return nil, false
	}
	l, ok := layouts[canon]
	return l, ok
}

// LookupRow maps (category, item number) to a template row.
func LookupRow(category string, number int) (int, bool) {
	l, ok := LookupLayout(category)
	if !ok {
		return 0, false
	}
	return l.Row(number)
}

// Categories lists the canonical names that have a layout.
func Categories() []string {
	out := make([]string, 0, len(layouts))
	for name := range layouts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
