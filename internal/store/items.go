package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ItemStore struct {
	db *sqlx.DB
}

/*
ListByCategory returns the checklist items of one category ordered by their
category-scoped number. The category is matched by name so the lookup can run
concurrently with the category read itself.
*/
func (is *ItemStore) ListByCategory(ctx context.Context, categoryName string) ([]ItemWithStage, error) {
	query := is.db.Rebind(`
	SELECT
		i.id,
		i.categoria_id,
		i.etapa_id,
		i.numero,
		i.pregunta,
		i.fila_excel,
		e.nombre AS etapa_nombre,
		e.orden AS etapa_orden
	FROM
		items i
	JOIN
		categorias c ON c.id = i.categoria_id
	JOIN
		etapas e ON e.id = i.etapa_id
	WHERE
		c.nombre = ?
	ORDER BY
		i.numero`)

	var out []ItemWithStage
	if err := is.db.SelectContext(ctx, &out, query, categoryName); err != nil {
		return nil, fmt.Errorf("failed to list items for category %q: %w", categoryName, err)
	}
	return out, nil
}

func (is *ItemStore) Insert(ctx context.Context, item *Item) error {
	query := is.db.Rebind(`INSERT INTO items (
		categoria_id,
		etapa_id,
		numero,
		pregunta,
		fila_excel
	) VALUES (?, ?, ?, ?, ?)
	RETURNING id`)

	err := is.db.QueryRowxContext(ctx, query,
		item.CategoryID,
		item.StageID,
		item.Number,
		item.Question,
		item.TemplateRow,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert item %d: %w", item.Number, err)
	}
	return nil
}
