package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const sqlitePrefix = "sqlite://"

// Driver picks the database/sql driver for addr. "sqlite://<path>" and
// "file:<path>" open SQLite; anything else is handed to lib/pq.
func Driver(addr string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(addr, sqlitePrefix):
		return "sqlite3", strings.TrimPrefix(addr, sqlitePrefix)
	case strings.HasPrefix(addr, "file:"):
		return "sqlite3", addr
	default:
		return "postgres", addr
	}
}

func New(addr string, maxOpenConns, maxIdleConns int, maxIdleTime string) (*sqlx.DB, error) {
	driver, dsn := Driver(addr)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	if driver == "sqlite3" {
		maxOpenConns, maxIdleConns = 1, 1
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	duration, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	return db, nil
}
