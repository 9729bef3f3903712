package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

type Storage struct {
	Categories interface {
		GetByName(ctx context.Context, name string) (*Category, error)
		List(ctx context.Context) ([]Category, error)
		Insert(ctx context.Context, c *Category) error
	}

	Stages interface {
		GetOrCreate(ctx context.Context, s *Stage) error
	}

	Items interface {
		ListByCategory(ctx context.Context, categoryName string) ([]ItemWithStage, error)
		Insert(ctx context.Context, item *Item) error
	}

	Responses interface {
		ListByRecord(ctx context.Context, recordID int64) ([]Response, error)
		Upsert(ctx context.Context, r *Response) (created bool, err error)
	}

	Records interface {
		GetByID(ctx context.Context, id int64) (*Record, error)
		Insert(ctx context.Context, r *Record) error
	}

	ExportHistory interface {
		Insert(ctx context.Context, h *ExportHistory) error
		ListByRecord(ctx context.Context, recordID int64, limit int) ([]ExportHistory, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Categories: &CategoryStore{db: db},
		Stages:     &StageStore{db: db},
		Items:      &ItemStore{db: db},
		Responses:  &ResponseStore{db: db},
		Records:    &RecordStore{db: db},

		ExportHistory: &ExportHistoryStore{db: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
