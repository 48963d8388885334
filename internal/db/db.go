package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// DB is the MySQL storage engine. Every collection shares the records table;
// seq keeps insertion order for scans.
type DB struct {
	*sqlx.DB
}

func Open(dsn string) (*DB, error) {
	xdb, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := xdb.Ping(); err != nil {
		_ = xdb.Close()
		return nil, err
	}
	return &DB{DB: xdb}, nil
}

// New wraps an existing connection, e.g. one created by sqlmock in tests.
func New(conn *sql.DB) *DB {
	return &DB{DB: sqlx.NewDb(conn, "mysql")}
}

func (d *DB) Close() error { return d.DB.Close() }

// EnsureSchema creates the records table when missing.
func EnsureSchema(ctx context.Context, d *DB) error {
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

const schema = `CREATE TABLE IF NOT EXISTS records (
	seq BIGINT AUTO_INCREMENT PRIMARY KEY,
	collection VARCHAR(64) NOT NULL,
	id VARCHAR(512) NOT NULL,
	doc LONGTEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_records_collection_id (collection, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`

type record struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

func (d *DB) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := d.ExecContext(ctx,
		"INSERT INTO records (collection, id, doc) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
		collection, id, doc)
	return err
}

func (d *DB) Fetch(ctx context.Context, collection, id string) ([]byte, error) {
	var doc []byte
	err := d.GetContext(ctx, &doc, "SELECT doc FROM records WHERE collection=? AND id=?", collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *DB) Remove(ctx context.Context, collection, id string) error {
	_, err := d.ExecContext(ctx, "DELETE FROM records WHERE collection=? AND id=?", collection, id)
	return err
}

// Scan loads the whole collection before calling fn; collections here stay small.
func (d *DB) Scan(ctx context.Context, collection string, fn func(id string, doc []byte) bool) error {
	var rows []record
	if err := d.SelectContext(ctx, &rows, "SELECT id, doc FROM records WHERE collection=? ORDER BY seq ASC", collection); err != nil {
		return err
	}
	for _, r := range rows {
		if !fn(r.ID, r.Doc) {
			break
		}
	}
	return nil
}

var _ store.Engine = (*DB)(nil)
