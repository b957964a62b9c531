package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/jtbd"
)

// DBTX is the statement surface shared by *sql.DB and *sql.Tx, the same
// seam the sqlc-generated query layers expose.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Column statically binds one storage column to one programmatic field of T.
// Ptr returns a pointer to the field and serves both scanning and exec args;
// the declaration is the whole translation table, no runtime case mapping.
type Column[T any] struct {
	Name  string // storage name (snake_case)
	Field string // programmatic name (camelCase, as serialized)
	Ptr   func(*T) any
}

// Mapping declares how T persists: its table, its columns, its id and
// timestamp accessors, and an optional row invariant checked after scan.
type Mapping[T any] struct {
	Table     string
	Columns   []Column[T]
	ID        func(*T) *string
	CreatedAt func(*T) *time.Time
	UpdatedAt func(*T) *time.Time
	Check     func(*T) error
}

// Query narrows a FindMany or Count call. Filter keys and OrderBy use
// programmatic field names.
type Query struct {
	Filter  map[string]any
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Patch is a partial update keyed by programmatic field names. Unknown
// fields, the id and the timestamps are rejected.
type Patch map[string]any

// Store is the generic persistence primitive for one entity shape.
type Store[T any] struct {
	db      *DB
	q       DBTX
	dialect Dialect
	m       Mapping[T]
	byField map[string]int
}

// New builds a store after validating the mapping declaration.
func New[T any](db *DB, m Mapping[T]) (*Store[T], error) {
	if m.Table == "" {
		return nil, errors.New("store: mapping has no table")
	}
	if m.ID == nil || m.CreatedAt == nil || m.UpdatedAt == nil {
		return nil, fmt.Errorf("store: mapping for %s lacks id or timestamp accessors", m.Table)
	}
	byField := make(map[string]int, len(m.Columns))
	byName := make(map[string]struct{}, len(m.Columns))
	for i, col := range m.Columns {
		if col.Name == "" || col.Field == "" || col.Ptr == nil {
			return nil, fmt.Errorf("store: incomplete column %d on %s", i, m.Table)
		}
		if _, dup := byField[col.Field]; dup {
			return nil, fmt.Errorf("store: duplicate field %q on %s", col.Field, m.Table)
		}
		if _, dup := byName[col.Name]; dup {
			return nil, fmt.Errorf("store: duplicate column %q on %s", col.Name, m.Table)
		}
		byField[col.Field] = i
		byName[col.Name] = struct{}{}
	}
	for _, required := range []string{"id", "created_at", "updated_at"} {
		if _, ok := byName[required]; !ok {
			return nil, fmt.Errorf("store: mapping for %s lacks %s column", m.Table, required)
		}
	}
	return &Store[T]{db: db, q: db.DB, dialect: db.Dialect, m: m, byField: byField}, nil
}

// MustNew is New for statically declared mappings, panicking on a
// declaration bug.
func MustNew[T any](db *DB, m Mapping[T]) *Store[T] {
	s, err := New(db, m)
	if err != nil {
		panic(err)
	}
	return s
}

// WithTx binds the store to an open transaction.
func (s *Store[T]) WithTx(tx *sql.Tx) *Store[T] {
	c := *s
	c.q = tx
	return &c
}

// DB exposes the underlying handle for callers that open transactions
// spanning several stores.
func (s *Store[T]) DB() *DB { return s.db }

func (s *Store[T]) columnNames() []string {
	names := make([]string, len(s.m.Columns))
	for i, col := range s.m.Columns {
		names[i] = col.Name
	}
	return names
}

func (s *Store[T]) ptrs(rec *T) []any {
	out := make([]any, len(s.m.Columns))
	for i, col := range s.m.Columns {
		out[i] = col.Ptr(rec)
	}
	return out
}

func (s *Store[T]) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.columnNames(), ", "), s.m.Table)
}

func (s *Store[T]) scanRow(row interface{ Scan(...any) error }) (*T, error) {
	var rec T
	if err := row.Scan(s.ptrs(&rec)...); err != nil {
		return nil, err
	}
	if s.m.Check != nil {
		if err := s.m.Check(&rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", jtbd.ErrCorruptRecord, s.m.Table, err)
		}
	}
	return &rec, nil
}

// inTx runs fn inside one transaction when the store is bound to the raw
// handle, or reuses the caller's transaction when already bound to one.
func (s *Store[T]) inTx(ctx context.Context, fn func(q DBTX) error) error {
	if _, standalone := s.q.(*sql.DB); !standalone {
		return fn(s.q)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Create assigns a fresh id and timestamps, inserts the record and returns
// it as persisted. Insert and re-read run in one transaction.
func (s *Store[T]) Create(ctx context.Context, rec T) (*T, error) {
	now := time.Now().UTC()
	*s.m.ID(&rec) = util.NewID()
	*s.m.CreatedAt(&rec) = now
	*s.m.UpdatedAt(&rec) = now

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.m.Columns)), ", ")
	insert := s.dialect.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		s.m.Table, strings.Join(s.columnNames(), ", "), placeholders,
	))

	args := make([]any, len(s.m.Columns))
	for i, col := range s.m.Columns {
		args[i] = col.Ptr(&rec)
	}

	id := *s.m.ID(&rec)
	var created *T
	err := s.inTx(ctx, func(q DBTX) error {
		if _, err := q.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("store: insert %s: %w", s.m.Table, err)
		}
		row := q.QueryRowContext(ctx, s.dialect.Rebind(s.selectSQL()+" WHERE id = ?"), id)
		out, err := s.scanRow(row)
		if err != nil {
			return fmt.Errorf("store: read back %s %s: %w", s.m.Table, id, err)
		}
		created = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByID returns the record or nil when the id does not exist.
func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	row := s.q.QueryRowContext(ctx, s.dialect.Rebind(s.selectSQL()+" WHERE id = ?"), id)
	rec, err := s.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find %s %s: %w", s.m.Table, id, err)
	}
	return rec, nil
}

// FindMany returns records matching an equality filter with optional
// single-column ordering and pagination.
func (s *Store[T]) FindMany(ctx context.Context, query Query) ([]T, error) {
	sqlText, args, err := s.buildSelect(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", s.m.Table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", s.m.Table, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows %s: %w", s.m.Table, err)
	}
	return out, nil
}

func (s *Store[T]) buildSelect(query Query) (string, []any, error) {
	var b strings.Builder
	b.WriteString(s.selectSQL())
	args, err := s.appendWhere(&b, query.Filter)
	if err != nil {
		return "", nil, err
	}
	if query.OrderBy != "" {
		idx, ok := s.byField[query.OrderBy]
		if !ok {
			return "", nil, fmt.Errorf("store: %s has no field %q", s.m.Table, query.OrderBy)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(s.m.Columns[idx].Name)
		if query.Desc {
			b.WriteString(" DESC")
		}
	}
	if query.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", query.Offset)
	}
	return s.dialect.Rebind(b.String()), args, nil
}

func (s *Store[T]) appendWhere(b *strings.Builder, filter map[string]any) ([]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	args := make([]any, 0, len(fields))
	for i, field := range fields {
		idx, ok := s.byField[field]
		if !ok {
			return nil, fmt.Errorf("store: %s has no field %q", s.m.Table, field)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		value := filter[field]
		if value == nil {
			b.WriteString(s.m.Columns[idx].Name)
			b.WriteString(" IS NULL")
			continue
		}
		b.WriteString(s.m.Columns[idx].Name)
		b.WriteString(" = ?")
		args = append(args, value)
	}
	return args, nil
}

// Update merges the patch into an existing record, refreshes updated_at and
// returns the full updated record, or nil when the id does not exist.
// Update and re-read run in one transaction.
func (s *Store[T]) Update(ctx context.Context, id string, patch Patch) (*T, error) {
	if len(patch) == 0 {
		return s.FindByID(ctx, id)
	}

	fields := make([]string, 0, len(patch))
	for field := range patch {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET ", s.m.Table)
	args := make([]any, 0, len(fields)+2)
	for _, field := range fields {
		switch field {
		case "id", "createdAt", "updatedAt":
			return nil, fmt.Errorf("store: field %q is not patchable", field)
		}
		idx, ok := s.byField[field]
		if !ok {
			return nil, fmt.Errorf("store: %s has no field %q", s.m.Table, field)
		}
		b.WriteString(s.m.Columns[idx].Name)
		b.WriteString(" = ?, ")
		args = append(args, patch[field])
	}
	b.WriteString("updated_at = ? WHERE id = ?")
	args = append(args, time.Now().UTC(), id)

	var updated *T
	err := s.inTx(ctx, func(q DBTX) error {
		res, err := q.ExecContext(ctx, s.dialect.Rebind(b.String()), args...)
		if err != nil {
			return fmt.Errorf("store: update %s %s: %w", s.m.Table, id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("store: update %s %s: %w", s.m.Table, id, err)
		}
		if affected == 0 {
			return nil
		}
		row := q.QueryRowContext(ctx, s.dialect.Rebind(s.selectSQL()+" WHERE id = ?"), id)
		out, err := s.scanRow(row)
		if err != nil {
			return fmt.Errorf("store: read back %s %s: %w", s.m.Table, id, err)
		}
		updated = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a record and reports whether a row was removed.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, s.dialect.Rebind(
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.m.Table)), id)
	if err != nil {
		return false, fmt.Errorf("store: delete %s %s: %w", s.m.Table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete %s %s: %w", s.m.Table, id, err)
	}
	return affected > 0, nil
}

// Count returns the number of records matching an equality filter.
func (s *Store[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", s.m.Table)
	args, err := s.appendWhere(&b, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.q.QueryRowContext(ctx, s.dialect.Rebind(b.String()), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", s.m.Table, err)
	}
	return n, nil
}
