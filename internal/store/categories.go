package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type CategoryStore struct {
	db *sqlx.DB
}

func (cs *CategoryStore) GetByName(ctx context.Context, name string) (*Category, error) {
	query := cs.db.Rebind(`SELECT id, nombre, hoja, activa FROM categorias WHERE nombre = ?`)

	var c Category
	if err := cs.db.GetContext(ctx, &c, query, name); err != nil {
		return nil, fmt.Errorf("failed to get category %q: %w", name, notFound(err))
	}
	return &c, nil
}

func (cs *CategoryStore) List(ctx context.Context) ([]Category, error) {
	query := `SELECT id, nombre, hoja, activa FROM categorias ORDER BY id`

	var out []Category
	if err := cs.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

func (cs *CategoryStore) Insert(ctx context.Context, c *Category) error {
	query := cs.db.Rebind(`INSERT INTO categorias (nombre, hoja, activa)
	VALUES (?, ?, ?)
	RETURNING id`)

	if err := cs.db.QueryRowxContext(ctx, query, c.Name, c.Sheet, c.Active).Scan(&c.ID); err != nil {
		return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
	}
	return nil
}

type StageStore struct {
	db *sqlx.DB
}

// GetOrCreate fills s.ID with the stage matching (categoria_id, nombre),
// inserting it first when absent.
func (ss *StageStore) GetOrCreate(ctx context.Context, s *Stage) error {
	lookup := ss.db.Rebind(`SELECT id FROM etapas WHERE categoria_id = ? AND nombre = ?`)
	err := ss.db.QueryRowxContext(ctx, lookup, s.CategoryID, s.Name).Scan(&s.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up stage %q: %w", s.Name, err)
	}

	insert := ss.db.Rebind(`INSERT INTO etapas (categoria_id, nombre, orden)
	VALUES (?, ?, ?)
	RETURNING id`)
	if err := ss.db.QueryRowxContext(ctx, insert, s.CategoryID, s.Name, s.Order).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to insert stage %q: %w", s.Name, err)
	}
	return nil
}
