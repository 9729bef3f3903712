package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS categorias (
	id      BIGSERIAL PRIMARY KEY,
	nombre  TEXT NOT NULL UNIQUE,
	hoja    TEXT NOT NULL DEFAULT '',
	activa  BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS etapas (
	id            BIGSERIAL PRIMARY KEY,
	categoria_id  BIGINT NOT NULL REFERENCES categorias(id),
	nombre        TEXT NOT NULL,
	orden         INTEGER NOT NULL DEFAULT 0,
	UNIQUE (categoria_id, nombre)
);

CREATE TABLE IF NOT EXISTS items (
	id            BIGSERIAL PRIMARY KEY,
	categoria_id  BIGINT NOT NULL REFERENCES categorias(id),
	etapa_id      BIGINT NOT NULL REFERENCES etapas(id),
	numero        INTEGER NOT NULL,
	pregunta      TEXT NOT NULL,
	fila_excel    INTEGER,
	UNIQUE (categoria_id, numero)
);

CREATE TABLE IF NOT EXISTS registros (
	id                 BIGSERIAL PRIMARY KEY,
	numero_contrato    TEXT NOT NULL,
	contratista        TEXT NOT NULL DEFAULT '',
	objeto             TEXT NOT NULL DEFAULT '',
	valor              NUMERIC(18, 2) NOT NULL DEFAULT 0,
	fecha_suscripcion  TIMESTAMPTZ NOT NULL,
	categoria_id       BIGINT NOT NULL REFERENCES categorias(id)
);

CREATE TABLE IF NOT EXISTS respuestas (
	id              BIGSERIAL PRIMARY KEY,
	item_id         BIGINT NOT NULL REFERENCES items(id),
	registro_id     BIGINT NOT NULL REFERENCES registros(id),
	respuesta       TEXT,
	observaciones   TEXT NOT NULL DEFAULT '',
	actualizado_en  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (item_id, registro_id)
);

CREATE INDEX IF NOT EXISTS idx_respuestas_registro ON respuestas(registro_id);

CREATE TABLE IF NOT EXISTS historial_exportaciones (
	id                BIGSERIAL PRIMARY KEY,
	export_id         TEXT NOT NULL UNIQUE,
	registro_id       BIGINT NOT NULL REFERENCES registros(id),
	categorias        TEXT NOT NULL DEFAULT '',
	estrategia        TEXT NOT NULL,
	traza             TEXT NOT NULL,
	fuente_plantilla  TEXT NOT NULL DEFAULT '',
	archivo           TEXT NOT NULL,
	origen            TEXT NOT NULL,
	omitidos          INTEGER NOT NULL DEFAULT 0,
	creado_en         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_historial_registro ON historial_exportaciones(registro_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categorias (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre  TEXT NOT NULL UNIQUE,
	hoja    TEXT NOT NULL DEFAULT '',
	activa  BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS etapas (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	categoria_id  INTEGER NOT NULL REFERENCES categorias(id),
	nombre        TEXT NOT NULL,
	orden         INTEGER NOT NULL DEFAULT 0,
	UNIQUE (categoria_id, nombre)
);

CREATE TABLE IF NOT EXISTS items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	categoria_id  INTEGER NOT NULL REFERENCES categorias(id),
	etapa_id      INTEGER NOT NULL REFERENCES etapas(id),
	numero        INTEGER NOT NULL,
	pregunta      TEXT NOT NULL,
	fila_excel    INTEGER,
	UNIQUE (categoria_id, numero)
);

CREATE TABLE IF NOT EXISTS registros (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	numero_contrato    TEXT NOT NULL,
	contratista        TEXT NOT NULL DEFAULT '',
	objeto             TEXT NOT NULL DEFAULT '',
	valor              REAL NOT NULL DEFAULT 0,
	fecha_suscripcion  TIMESTAMP NOT NULL,
	categoria_id       INTEGER NOT NULL REFERENCES categorias(id)
);

CREATE TABLE IF NOT EXISTS respuestas (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id         INTEGER NOT NULL REFERENCES items(id),
	registro_id     INTEGER NOT NULL REFERENCES registros(id),
	respuesta       TEXT,
	observaciones   TEXT NOT NULL DEFAULT '',
	actualizado_en  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (item_id, registro_id)
);

CREATE INDEX IF NOT EXISTS idx_respuestas_registro ON respuestas(registro_id);

CREATE TABLE IF NOT EXISTS historial_exportaciones (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	export_id         TEXT NOT NULL UNIQUE,
	registro_id       INTEGER NOT NULL REFERENCES registros(id),
	categorias        TEXT NOT NULL DEFAULT '',
	estrategia        TEXT NOT NULL,
	traza             TEXT NOT NULL,
	fuente_plantilla  TEXT NOT NULL DEFAULT '',
	archivo           TEXT NOT NULL,
	origen            TEXT NOT NULL,
	omitidos          INTEGER NOT NULL DEFAULT 0,
	creado_en         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_historial_registro ON historial_exportaciones(registro_id);
`

// Migrate creates the checklist tables for the connected driver.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var schema string
	switch db.DriverName() {
	case "postgres":
		schema = postgresSchema
	case "sqlite3":
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
