package archive

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"exodash/internal/domain"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SnapshotSource answers catalog queries from a DuckDB database written by
// WriteSnapshot.
type SnapshotSource struct {
	db   *sql.DB
	path string
}

// OpenSnapshot opens the DuckDB file at path read-only.
func OpenSnapshot(path string) (*SnapshotSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrValidation("snapshot path is required")
	}
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	return &SnapshotSource{db: db, path: path}, nil
}

// NewSnapshotSource wraps an already open DuckDB handle.
func NewSnapshotSource(db *sql.DB) *SnapshotSource {
	return &SnapshotSource{db: db, path: ":memory:"}
}

// Name implements domain.CatalogSource.
func (s *SnapshotSource) Name() string { return "duckdb:" + s.path }

// Close releases the underlying database handle.
func (s *SnapshotSource) Close() error { return s.db.Close() }

// Query implements domain.CatalogSource.
func (s *SnapshotSource) Query(ctx context.Context, q domain.CatalogQuery) (*domain.Table, error) {
	if !identRe.MatchString(q.Table) {
		return nil, domain.ErrValidation("invalid table name %q", q.Table)
	}
	rows, err := s.db.QueryContext(ctx, q.SQL())
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	table := domain.NewTable(q.Columns)
	texts := make([]sql.NullString, len(q.Columns))
	nums := make([]sql.NullFloat64, len(q.Columns))
	ptrs := make([]any, len(q.Columns))
	for i, c := range q.Columns {
		if c.Kind() == domain.KindText {
			ptrs[i] = &texts[i]
		} else {
			ptrs[i] = &nums[i]
		}
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var rec domain.Record
		for i, c := range q.Columns {
			if c.Kind() == domain.KindText {
				rec.Set(c, domain.TextValue(texts[i].String))
				continue
			}
			if nums[i].Valid {
				rec.Set(c, domain.NumberValue(nums[i].Float64))
			} else {
				rec.Set(c, domain.NullNumber())
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return table, nil
}

var _ domain.CatalogSource = (*SnapshotSource)(nil)

// WriteSnapshot replaces tableName in db with the contents of t and records
// the capture time in snapshot_meta.
func WriteSnapshot(ctx context.Context, db *sql.DB, tableName string, t *domain.Table) error {
	if !identRe.MatchString(tableName) {
		return domain.ErrValidation("invalid table name %q", tableName)
	}

	defs := make([]string, len(t.Columns))
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ := "DOUBLE"
		if c.Kind() == domain.KindText {
			typ = "VARCHAR"
		}
		defs[i] = c.Name() + " " + typ
		names[i] = c.Name()
		marks[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", tableName, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", tableName, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	args := make([]any, len(t.Columns))
	for i := range t.Rows {
		for j, c := range t.Columns {
			v := t.Rows[i].Value(c)
			switch {
			case v.Kind == domain.KindText:
				args[j] = v.Text
			case v.Null:
				args[j] = nil
			default:
				args[j] = v.Number
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshot_meta (
		table_name VARCHAR, row_count BIGINT, taken_at TIMESTAMP)`); err != nil {
		return fmt.Errorf("create snapshot_meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO snapshot_meta VALUES (?, ?, ?)",
		tableName, int64(t.Len()), time.Now().UTC()); err != nil {
		return fmt.Errorf("record snapshot_meta: %w", err)
	}

	return tx.Commit()
}

// SaveSnapshot writes t into the DuckDB file at path, creating it if needed.
func SaveSnapshot(ctx context.Context, path, tableName string, t *domain.Table) error {
	if strings.TrimSpace(path) == "" {
		return domain.ErrValidation("snapshot path is required")
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", path, err)
	}
	if err := WriteSnapshot(ctx, db, tableName, t); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", path, err)
	}
	return nil
}
