package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type ResponseStore struct {
	db *sqlx.DB
}

func (rs *ResponseStore) ListByRecord(ctx context.Context, recordID int64) ([]Response, error) {
	query := rs.db.Rebind(`
	SELECT
		id,
		item_id,
		registro_id,
		respuesta,
		observaciones,
		actualizado_en
	FROM
		respuestas
	WHERE
		registro_id = ?
	ORDER BY
		item_id`)

	var out []Response
	if err := rs.db.SelectContext(ctx, &out, query, recordID); err != nil {
		return nil, fmt.Errorf("failed to list responses for record %d: %w", recordID, err)
	}
	return out, nil
}

// Upsert keeps at most one response per (item, record): it looks the pair up
// inside a transaction and updates the existing row or inserts a new one.
func (rs *ResponseStore) Upsert(ctx context.Context, r *Response) (bool, error) {
	tx, err := rs.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	lookup := tx.Rebind(`SELECT id FROM respuestas WHERE item_id = ? AND registro_id = ?`)
	var existing int64
	err = tx.QueryRowxContext(ctx, lookup, r.ItemID, r.RecordID).Scan(&existing)

	created := false
	switch {
	case err == nil:
		update := tx.Rebind(`UPDATE respuestas
		SET respuesta = ?, observaciones = ?, actualizado_en = ?
		WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, update, r.Answer, r.Observations, r.UpdatedAt, existing); err != nil {
			return false, fmt.Errorf("failed to update response for item %d: %w", r.ItemID, err)
		}
		r.ID = existing
	case errors.Is(err, sql.ErrNoRows):
		insert := tx.Rebind(`INSERT INTO respuestas (
			item_id,
			registro_id,
			respuesta,
			observaciones,
			actualizado_en
		) VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
		if err := tx.QueryRowxContext(ctx, insert, r.ItemID, r.RecordID, r.Answer, r.Observations, r.UpdatedAt).Scan(&r.ID); err != nil {
			return false, fmt.Errorf("failed to insert response for item %d: %w", r.ItemID, err)
		}
		created = true
	default:
		return false, fmt.Errorf("failed to look up response for item %d: %w", r.ItemID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit response for item %d: %w", r.ItemID, err)
	}
	return created, nil
}
