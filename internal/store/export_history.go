package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type ExportHistoryStore struct {
	db *sqlx.DB
}

var (
	TriggerTypeAPI = "api"
	TriggerTypeCLI = "cli"
)

func (eh *ExportHistoryStore) Insert(ctx context.Context, history *ExportHistory) error {
	query := `INSERT INTO historial_exportaciones (
		export_id,
		registro_id,
		categorias,
		estrategia,
		traza,
		fuente_plantilla,
		archivo,
		origen,
		omitidos,
		creado_en
	) VALUES (
		:export_id,
		:registro_id,
		:categorias,
		:estrategia,
		:traza,
		:fuente_plantilla,
		:archivo,
		:origen,
		:omitidos,
		:creado_en
	) RETURNING id`

	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now().UTC()
	}

	rows, err := sqlx.NamedQueryContext(ctx, eh.db, query, history)
	if err != nil {
		return fmt.Errorf("failed to insert export history %s: %w", history.ExportID, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&history.ID); err != nil {
			return fmt.Errorf("failed to scan export history %s: %w", history.ExportID, err)
		}
	}
	return rows.Err()
}

// ListByRecord returns the most recent exports of a record first.
func (eh *ExportHistoryStore) ListByRecord(ctx context.Context, recordID int64, limit int) ([]ExportHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	query := eh.db.Rebind(`
	SELECT
		id,
		export_id,
		registro_id,
		categorias,
		estrategia,
		traza,
		fuente_plantilla,
		archivo,
		origen,
		omitidos,
		creado_en
	FROM
		historial_exportaciones
	WHERE
		registro_id = ?
	ORDER BY
		creado_en DESC, id DESC
	LIMIT ?`)

	var out []ExportHistory
	if err := eh.db.SelectContext(ctx, &out, query, recordID, limit); err != nil {
		return nil, fmt.Errorf("failed to list export history for record %d: %w", recordID, err)
	}
	return out, nil
}
