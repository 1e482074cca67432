// Package storage persists the expense ledger in SQLite. The whole
// ledger lives in a single expenses table; ids come from AUTOINCREMENT
// and are never reused, so a deleted id stays dead forever.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

const (
	insertRecordSQL = `INSERT INTO expenses (date, category, amount_cents, note) VALUES (?, ?, ?, ?)`
	selectRecordSQL = `SELECT id, date, category, amount_cents, note FROM expenses WHERE id = ?`
	deleteRecordSQL = `DELETE FROM expenses WHERE id = ?`
	listRecordsSQL  = `SELECT id, date, category, amount_cents, note FROM expenses ORDER BY date DESC, id DESC`
	countRecordsSQL = `SELECT COUNT(*) FROM expenses`
)

// Ledger is the SQLite-backed record store.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewLedger(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite permits one writer at a time; a single pooled connection
	// serializes concurrent handlers instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close releases the underlying connection pool.
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Insert stores a record and returns it with the assigned id.
func (l *Ledger) Insert(ctx context.Context, record core.Record) (core.Record, error) {
	result, err := l.db.ExecContext(ctx, insertRecordSQL,
		record.Date.String(),
		string(record.Category),
		record.Amount.Cents,
		record.Note,
	)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("read inserted id: %w", err)
	}
	record.ID = id

	slog.DebugContext(ctx, "record persisted",
		"id", record.ID,
		"date", record.Date.String(),
		"category", string(record.Category),
		"amount_cents", record.Amount.Cents)

	return record, nil
}

// Get fetches a record by id. The bool reports whether it exists.
func (l *Ledger) Get(ctx context.Context, id int64) (core.Record, bool, error) {
	row := l.db.QueryRowContext(ctx, selectRecordSQL, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, false, nil
	}
	if err != nil {
		return core.Record{}, false, fmt.Errorf("get record %d: %w", id, err)
	}
	return record, true, nil
}

// Delete removes a record by id. The bool reports whether a row was
// actually removed; deleting an unknown id is not an error.
func (l *Ledger) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := l.db.ExecContext(ctx, deleteRecordSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}

	if affected > 0 {
		slog.DebugContext(ctx, "record removed", "id", id)
	}
	return affected > 0, nil
}

// ListAll returns the whole ledger, newest date first. Records sharing
// a date come back most recently recorded first.
func (l *Ledger) ListAll(ctx context.Context) ([]core.Record, error) {
	rows, err := l.db.QueryContext(ctx, listRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (l *Ledger) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.QueryRowContext(ctx, countRecordsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		record   core.Record
		date     string
		category string
	)
	if err := row.Scan(&record.ID, &date, &category, &record.Amount.Cents, &record.Note); err != nil {
		return core.Record{}, err
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Record{}, fmt.Errorf("row %d holds malformed date %q: %w", record.ID, date, err)
	}
	record.Date = parsed
	record.Category = core.Category(category)

	return record, nil
}
