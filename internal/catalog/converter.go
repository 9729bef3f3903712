package catalog

import (
	"github.com/go-gota/gota/dataframe"
)

// Column headers of the three provisioning files.
const (
	colCategory     = "categoria"
	colSheet        = "hoja"
	colStage        = "etapa"
	colStageOrder   = "orden_etapa"
	colNumber       = "numero"
	colQuestion     = "pregunta"
	colTemplateRow  = "fila_excel"
	colAnswer       = "respuesta"
	colObservations = "observaciones"
	colContract     = "numero_contrato"
	colContractor   = "contratista"
	colObject       = "objeto"
	colValue        = "valor"
	colSignedAt     = "fecha_suscripcion"
)

// ItemRow is one line of the catalog file.
type ItemRow struct {
	Category    string
	Sheet       string
	Stage       string
	StageOrder  int
	Number      int
	Question    string
	TemplateRow *int
}

// ResponseRow is one line of a responses file for a single registro.
type ResponseRow struct {
	Category     string
	Number       int
	Answer       string
	Observations string
}

// RecordRow is one line of the registros file.
type RecordRow struct {
	ContractNumber string
	Contractor     string
	Object         string
	Value          string
	SignedAt       string
	Category       string
}

func DfRowToItem(df dataframe.DataFrame, rowIdx int) ItemRow {

	return ItemRow{
		Category:    GetStr(colCategory, rowIdx, &df),
		Sheet:       GetStr(colSheet, rowIdx, &df),
		Stage:       GetStr(colStage, rowIdx, &df),
		StageOrder:  GetInt(colStageOrder, rowIdx, &df),
		Number:      GetInt(colNumber, rowIdx, &df),
		Question:    GetStr(colQuestion, rowIdx, &df),
		TemplateRow: GetOptionalInt(colTemplateRow, rowIdx, &df),
	}
}

func DfRowToResponse(df dataframe.DataFrame, rowIdx int) ResponseRow {

	return ResponseRow{
		Category:     GetStr(colCategory, rowIdx, &df),
		Number:       GetInt(colNumber, rowIdx, &df),
		Answer:       GetStr(colAnswer, rowIdx, &df),
		Observations: GetStr(colObservations, rowIdx, &df),
	}
}

func DfRowToRecord(df dataframe.DataFrame, rowIdx int) RecordRow {

	return RecordRow{
		ContractNumber: GetStr(colContract, rowIdx, &df),
		Contractor:     GetStr(colContractor, rowIdx, &df),
		Object:         GetStr(colObject, rowIdx, &df),
		Value:          GetStr(colValue, rowIdx, &df),
		SignedAt:       GetStr(colSignedAt, rowIdx, &df),
		Category:       GetStr(colCategory, rowIdx, &df),
	}
}

// Items converts every row of a catalog frame.
func Items(df dataframe.DataFrame) []ItemRow {
	out := make([]ItemRow, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		out = append(out, DfRowToItem(df, i))
	}
	return out
}

func Responses(df dataframe.DataFrame) []ResponseRow {
	out := make([]ResponseRow, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		out = append(out, DfRowToResponse(df, i))
	}
	return out
}

func Records(df dataframe.DataFrame) []RecordRow {
	out := make([]RecordRow, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		out = append(out, DfRowToRecord(df, i))
	}
	return out
}
