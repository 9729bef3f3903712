package store

import (
	"time"
)

// Category represents the 'categorias' table. Hoja is the template sheet
// the category is printed on.
type Category struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"nombre" json:"nombre"`
	Sheet  string `db:"hoja" json:"hoja"`
	Active bool   `db:"activa" json:"activa"`
}

// Stage represents the 'etapas' table.
type Stage struct {
	ID         int64  `db:"id" json:"id"`
	CategoryID int64  `db:"categoria_id" json:"categoria_id"`
	Name       string `db:"nombre" json:"nombre"`
	Order      int    `db:"orden" json:"orden"`
}

// Item represents the 'items' table. TemplateRow is the authoritative
// spreadsheet row (fila_excel) when the form revision recorded it.
type Item struct {
	ID          int64  `db:"id" json:"id"`
	CategoryID  int64  `db:"categoria_id" json:"categoria_id"`
	StageID     int64  `db:"etapa_id" json:"etapa_id"`
	Number      int    `db:"numero" json:"numero"`
	Question    string `db:"pregunta" json:"pregunta"`
	TemplateRow *int   `db:"fila_excel" json:"fila_excel,omitempty"`
}

// ItemWithStage is an Item joined with its stage for ordering and display.
type ItemWithStage struct {
	Item
	StageName  string `db:"etapa_nombre" json:"etapa"`
	StageOrder int    `db:"etapa_orden" json:"etapa_orden"`
}

// Response represents the 'respuestas' table. Answer is nil while the
// question has not been answered.
type Response struct {
	ID           int64     `db:"id" json:"id"`
	ItemID       int64     `db:"item_id" json:"item_id"`
	RecordID     int64     `db:"registro_id" json:"registro_id"`
	Answer       *string   `db:"respuesta" json:"respuesta,omitempty"`
	Observations string    `db:"observaciones" json:"observaciones"`
	UpdatedAt    time.Time `db:"actualizado_en" json:"actualizado_en"`
}

// Record represents the 'registros' table: the audited contract.
type Record struct {
	ID             int64     `db:"id" json:"id"`
	ContractNumber string    `db:"numero_contrato" json:"numero_contrato"`
	Contractor     string    `db:"contratista" json:"contratista"`
	Object         string    `db:"objeto" json:"objeto"`
	Value          float64   `db:"valor" json:"valor"`
	SignedAt       time.Time `db:"fecha_suscripcion" json:"fecha_suscripcion"`
	CategoryID     int64     `db:"categoria_id" json:"categoria_id"`
	CategoryName   string    `db:"categoria_nombre" json:"categoria"`
}

// ExportHistory represents the 'historial_exportaciones' table: one row per
// produced spreadsheet.
type ExportHistory struct {
	ID             int64     `db:"id" json:"id"`
	ExportID       string    `db:"export_id" json:"export_id"`
	RecordID       int64     `db:"registro_id" json:"registro_id"`
	Categories     string    `db:"categorias" json:"categorias"`
	Strategy       string    `db:"estrategia" json:"estrategia"`
	Trace          string    `db:"traza" json:"traza"`
	TemplateSource string    `db:"fuente_plantilla" json:"fuente_plantilla,omitempty"`
	Filename       string    `db:"archivo" json:"archivo"`
	Trigger        string    `db:"origen" json:"origen"`
	Skipped        int       `db:"omitidos" json:"omitidos"`
	CreatedAt      time.Time `db:"creado_en" json:"creado_en"`
}
