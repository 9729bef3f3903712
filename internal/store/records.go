package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type RecordStore struct {
	db *sqlx.DB
}

func (rs *RecordStore) GetByID(ctx context.Context, id int64) (*Record, error) {
	query := rs.db.Rebind(`
	SELECT
		r.id,
		r.numero_contrato,
		r.contratista,
		r.objeto,
		r.valor,
		r.fecha_suscripcion,
		r.categoria_id,
		c.nombre AS categoria_nombre
	FROM
		registros r
	JOIN
		categorias c ON c.id = r.categoria_id
	WHERE
		r.id = ?`)

	var rec Record
	if err := rs.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, notFound(err))
	}
	return &rec, nil
}

func (rs *RecordStore) Insert(ctx context.Context, r *Record) error {
	query := rs.db.Rebind(`INSERT INTO registros (
		numero_contrato,
		contratista,
		objeto,
		valor,
		fecha_suscripcion,
		categoria_id
	) VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id`)

	err := rs.db.QueryRowxContext(ctx, query,
		r.ContractNumber,
		r.Contractor,
		r.Object,
		r.Value,
		r.SignedAt,
		r.CategoryID,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to insert record %q: %w", r.ContractNumber, err)
	}
	return nil
}
