package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

type row struct {
	ID     string `db:"id"`
	TS     int64  `db:"ts"`
	Brand  string `db:"brand"`
	Record string `db:"record"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS estimates (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT,
        ts INTEGER,
        brand TEXT,
        record TEXT
    );`,
	`CREATE INDEX IF NOT EXISTS estimates_brand_ts ON estimates (brand, ts);`,
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO estimates (id, ts, brand, record) VALUES (:id, :ts, :brand, :record)`,
		row{ID: rec.ID, TS: rec.Timestamp.UnixNano(), Brand: rec.Vehicle.Brand, Record: string(b)})
	return err
}

// Query returns records matching q, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT id, ts, brand, record FROM estimates WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Brand != "" {
		query += ` AND brand = ?`
		args = append(args, q.Brand)
	}
	query += ` ORDER BY ts DESC, seq DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	res := make([]Record, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		var r Record
		if err := json.Unmarshal([]byte(rows[i].Record), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record %s: %w", rows[i].ID, err)
		}
		res = append(res, r)
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
