package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DBInterface is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx.
type DBInterface interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store provides access to the planner database. A Store returned by
// Begin is bound to a transaction until Commit or Rollback.
type Store struct {
	db DBInterface
}

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	// WAL for concurrent readers, FKs for graph integrity.
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection serializes every
	// read-check-write transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection. It is a no-op on a transaction.
func (s *Store) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil
}

// Begin starts a transaction and returns a Store bound to it.
func (s *Store) Begin(ctx context.Context) (*Store, error) {
	db, ok := s.db.(*sqlx.DB)
	if !ok {
		return nil, fmt.Errorf("begin: store is already in a transaction")
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Store{db: tx}, nil
}

// Commit commits the transaction the store is bound to.
func (s *Store) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

// Rollback aborts the transaction the store is bound to.
func (s *Store) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", cerr)
		}
	}()
	return fn(tx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		role        TEXT NOT NULL,
		org_id      TEXT NOT NULL,
		created_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS templates (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		event_category  TEXT NOT NULL DEFAULT '',
		region          TEXT NOT NULL DEFAULT '',
		is_public       INTEGER NOT NULL DEFAULT 0,
		org_id          TEXT NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS template_modules (
		id             TEXT PRIMARY KEY,
		template_id    TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		order_index    INTEGER NOT NULL DEFAULT 0,
		required       INTEGER NOT NULL DEFAULT 0,
		budget_hint    TEXT NOT NULL DEFAULT '0',
		duration_days  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS template_tasks (
		id               TEXT PRIMARY KEY,
		module_id        TEXT NOT NULL REFERENCES template_modules(id) ON DELETE CASCADE,
		template_id      TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		priority         TEXT NOT NULL DEFAULT 'medium',
		estimated_hours  REAL NOT NULL DEFAULT 0,
		order_index      INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS template_task_deps (
		task_id        TEXT NOT NULL REFERENCES template_tasks(id) ON DELETE CASCADE,
		depends_on_id  TEXT NOT NULL REFERENCES template_tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, depends_on_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'PLANNING',
		start_date   DATETIME NOT NULL,
		end_date     DATETIME NOT NULL,
		venue        TEXT NOT NULL DEFAULT '',
		budget       TEXT NOT NULL DEFAULT '0',
		guest_count  INTEGER NOT NULL DEFAULT 0,
		org_id       TEXT NOT NULL,
		client_id    TEXT NOT NULL DEFAULT '',
		manager_id   TEXT NOT NULL DEFAULT '',
		template_id  TEXT REFERENCES templates(id),
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS modules (
		id             TEXT PRIMARY KEY,
		event_id       TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		budget         TEXT NOT NULL DEFAULT '0',
		duration_days  INTEGER NOT NULL DEFAULT 0,
		order_index    INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		module_id        TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		event_id         TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		priority         TEXT NOT NULL DEFAULT 'medium',
		estimated_hours  REAL NOT NULL DEFAULT 0,
		actual_hours     REAL NOT NULL DEFAULT 0,
		due_date         DATETIME NOT NULL,
		status           TEXT NOT NULL DEFAULT 'PENDING',
		assigned_to      TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		completed_at     DATETIME,
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id        TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, depends_on_id)
	);

	CREATE INDEX IF NOT EXISTS idx_task_dependencies_depends_on ON task_dependencies(depends_on_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_event ON tasks(event_id);

	CREATE TABLE IF NOT EXISTS activity (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id    TEXT NOT NULL,
		task_id     TEXT NOT NULL DEFAULT '',
		actor_id    TEXT NOT NULL DEFAULT '',
		event_type  TEXT NOT NULL,
		content     TEXT NOT NULL DEFAULT '',
		timestamp   DATETIME NOT NULL
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Stats returns row counts for templates and the instance tables.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `SELECT
		(SELECT COUNT(*) FROM templates)         AS templates,
		(SELECT COUNT(*) FROM events)            AS events,
		(SELECT COUNT(*) FROM modules)           AS modules,
		(SELECT COUNT(*) FROM tasks)             AS tasks,
		(SELECT COUNT(*) FROM task_dependencies) AS edges`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
