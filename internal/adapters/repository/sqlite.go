package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/metrics"
)

const itemsSchema = `CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY,
	text       TEXT    NOT NULL,
	type       TEXT    NOT NULL,
	domain     TEXT    NOT NULL DEFAULT '',
	difficulty REAL    NOT NULL
)`

// SQLiteStore persists the item bank in SQLite.
type SQLiteStore struct {
	sqlDB *sql.DB
	// serializes id assignment across appends
	writeMu sync.Mutex
}

// OpenSQLite opens a SQLite item bank, creating the schema if needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(itemsSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{sqlDB: sqlDB}
	s.publish(context.Background())
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Seed inserts items when the bank is empty. A non-empty bank is left as is
// and the number of inserted items is zero.
func (s *SQLiteStore) Seed(ctx context.Context, items []model.Item) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, ErrNotConfigured
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, wrapInvalid(err)
		}
		if _, dup := seen[item.ID]; dup {
			return 0, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
		if err := insertItem(ctx, tx, item); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	s.publish(ctx)
	return len(items), nil
}

// All returns every item ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, text, type, domain, difficulty FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Get returns the item with id.
func (s *SQLiteStore) Get(ctx context.Context, id int) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return model.Item{}, ErrNotConfigured
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, text, type, domain, difficulty FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// Append assigns the next id to item and stores it.
func (s *SQLiteStore) Append(ctx context.Context, item model.Item) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return model.Item{}, ErrNotConfigured
	}
	if err := validateAppend(item); err != nil {
		return model.Item{}, err
	}
	start := time.Now()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return model.Item{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM items`).Scan(&item.ID); err != nil {
		return model.Item{}, fmt.Errorf("next item id: %w", err)
	}
	if err := insertItem(ctx, tx, item); err != nil {
		return model.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Item{}, fmt.Errorf("commit append: %w", err)
	}

	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.publish(ctx)
	return item, nil
}

// Count returns the number of items, or zero when the bank cannot be read.
func (s *SQLiteStore) Count(ctx context.Context) int {
	if s == nil || s.sqlDB == nil {
		return 0
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Summary returns the total and per-domain item counts.
func (s *SQLiteStore) Summary(ctx context.Context) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Summary{}, ErrNotConfigured
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT domain, COUNT(*) FROM items GROUP BY domain`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize items: %w", err)
	}
	defer rows.Close()

	summary := Summary{Domains: make(map[string]int)}
	for rows.Next() {
		var (
			domain string
			n      int
		)
		if err := rows.Scan(&domain, &n); err != nil {
			return Summary{}, fmt.Errorf("scan summary: %w", err)
		}
		summary.Total += n
		if domain != "" {
			summary.Domains[domain] = n
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

func (s *SQLiteStore) publish(ctx context.Context) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return
	}
	metrics.UpdateBankSize(summary.Total)
	for domain, n := range summary.Domains {
		metrics.UpdateBankDomainSize(domain, n)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item model.Item
		typ  string
	)
	if err := row.Scan(&item.ID, &item.Text, &typ, &item.Domain, &item.Difficulty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, err
		}
		return model.Item{}, fmt.Errorf("scan item: %w", err)
	}
	item.Type = model.ResponseType(typ)
	return item, nil
}

func insertItem(ctx context.Context, tx *sql.Tx, item model.Item) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, text, type, domain, difficulty) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Text, string(item.Type), item.Domain, item.Difficulty)
	if err != nil {
		return fmt.Errorf("insert item %d: %w", item.ID, err)
	}
	return nil
}
