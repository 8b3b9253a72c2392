package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/pkg/logger"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS reminders (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	message      TEXT NOT NULL,
	trigger_time INTEGER NOT NULL,
	created      INTEGER NOT NULL
)`

// SQLiteStore keeps reminders in a single table. Every Update runs in an
// IMMEDIATE transaction, so concurrent writers in other processes wait on
// the database lock instead of overwriting each other.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, l logger.Logger) (*SQLiteStore, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return nil, ioError("mkdir", err)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	return &SQLiteStore{db: db, path: path, log: l}, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func loadRows(ctx context.Context, q querier) ([]reminder.Reminder, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, message, trigger_time, created FROM reminders ORDER BY created, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rs := []reminder.Reminder{}
	for rows.Next() {
		var r reminder.Reminder
		if err := rows.Scan(&r.ID, &r.Title, &r.Message, &r.TriggerTime, &r.Created); err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, rows.Err()
}

func replaceRows(ctx context.Context, q querier, rs []reminder.Reminder) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return err
	}
	for _, r := range rs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO reminders (id, title, message, trigger_time, created) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Title, r.Message, r.TriggerTime, r.Created,
		); err != nil {
			return err
		}
	}
	return nil
}

// Load reads every row.
func (s *SQLiteStore) Load() ([]reminder.Reminder, error) {
	rs, err := loadRows(context.Background(), s.db)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	return rs, nil
}

// Save replaces the table contents in one transaction.
func (s *SQLiteStore) Save(rs []reminder.Reminder) error {
	return s.Update(func([]reminder.Reminder) ([]reminder.Reminder, error) {
		return rs, nil
	})
}

// Update runs fn inside an immediate transaction.
func (s *SQLiteStore) Update(fn UpdateFunc) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ioError("begin", err)
	}
	defer tx.Rollback()

	rs, err := loadRows(ctx, tx)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	out, err := fn(rs)
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	if err := replaceRows(ctx, tx, out); err != nil {
		return ioError("write", err)
	}
	if err := tx.Commit(); err != nil {
		return ioError("commit", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
