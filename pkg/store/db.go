// Package store is the persistence layer: a driver-agnostic database handle
// plus a generic entity store with statically declared column-to-field
// mappings. Two backends are supported, embedded SQLite (default, also used
// by the test suite) and PostgreSQL through the pgx stdlib driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect identifies the SQL flavor of an open handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB wraps a sql.DB together with its dialect so query text written with
// `?` placeholders can be rebound where needed.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenParams selects and configures a storage backend.
//
//	Driver: "sqlite" (default) or "postgres"
//	DSN:    sqlite path (":memory:" allowed) or postgres DSN
type OpenParams struct {
	Driver string
	DSN    string
}

// Open connects to the configured backend and applies pending migrations.
func Open(ctx context.Context, params OpenParams) (*DB, error) {
	driver := strings.ToLower(strings.TrimSpace(params.Driver))
	if driver == "" {
		driver = string(DialectSQLite)
	}

	var (
		db  *sql.DB
		err error
		d   Dialect
	)
	switch Dialect(driver) {
	case DialectSQLite:
		dsn := params.DSN
		if dsn == "" {
			dsn = "ajtbd.db"
		}
		// Cascading deletes depend on foreign keys being enforced.
		db, err = sql.Open("sqlite", dsn+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err == nil {
			// A single writer connection keeps commits serialized, which is
			// the concurrency discipline the engine assumes.
			db.SetMaxOpenConns(1)
		}
		d = DialectSQLite
	case DialectPostgres:
		db, err = sql.Open("pgx", params.DSN)
		d = DialectPostgres
	default:
		return nil, fmt.Errorf("unknown storage driver %q", params.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	handle := &DB{DB: db, Dialect: d}
	if err := Migrate(handle); err != nil {
		db.Close()
		return nil, err
	}
	return handle, nil
}

// Rebind translates `?` placeholders to the dialect's own form.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		fmt.Fprintf(&b, "$%d", n)
	}
	return b.String()
}
