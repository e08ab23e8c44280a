package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	// Registered drivers; pick one with --db-driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type dialect struct {
	schema    string
	returning bool // INSERT ... RETURNING id instead of LastInsertId
	dollar    bool // $1 placeholders instead of ?
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: `CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title VARCHAR(200) NOT NULL,
			complete BOOLEAN NOT NULL DEFAULT 0
		)`,
	},
	DriverPostgres: {
		schema: `CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			complete BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		returning: true,
		dollar:    true,
	},
	DriverMySQL: {
		schema: `CREATE TABLE IF NOT EXISTS tasks (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			complete BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	},
}

// SQLStore is a Store over database/sql.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// Open connects, pings and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s, err := NewSQLStore(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing handle without touching the schema.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &SQLStore{db: db, d: d}, nil
}

// Migrate creates the tasks table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders for dialects that number them.
func (s *SQLStore) rebind(q string) string {
	if !s.d.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, complete FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Complete); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id, title, complete FROM tasks WHERE id = ?"), id).
		Scan(&t.ID, &t.Title, &t.Complete)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) Create(ctx context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	q := "INSERT INTO tasks (title, complete) VALUES (?, ?)"
	if s.d.returning {
		if err := s.db.QueryRowContext(ctx, s.rebind(q+" RETURNING id"), t.Title, t.Complete).Scan(&t.ID); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	}
	res, err := s.db.ExecContext(ctx, s.rebind(q), t.Title, t.Complete)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	t.ID = id
	return nil
}

func (s *SQLStore) Update(ctx context.Context, t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE tasks SET title = ?, complete = ? WHERE id = ?"), t.Title, t.Complete, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if n == 0 {
		// MySQL reports 0 for an unchanged row, so confirm it exists.
		if _, err := s.Get(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
