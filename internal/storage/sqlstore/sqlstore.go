// Package sqlstore implements storage.Store on top of database/sql.
//
// The same queries serve SQLite and PostgreSQL; a Dialect rewrites
// placeholders and supplies the row-lock clause used to serialize writers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	name       string
	numbered   bool   // $1, $2 placeholders instead of ?
	lockClause string // appended to the SELECT that locks a group or request row
}

var (
	// SQLite relies on BEGIN IMMEDIATE transactions (set on the connection
	// string) for write serialization, so it needs no row-lock clause.
	SQLite = Dialect{name: "sqlite"}

	// Postgres locks the group or request row for the rest of the transaction.
	Postgres = Dialect{name: "postgres", numbered: true, lockClause: " FOR UPDATE"}
)

// Name returns the dialect name.
func (d Dialect) Name() string {
	return d.name
}

// Rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a queryer to a dialect so call sites can write ? placeholders.
type conn struct {
	q queryer
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

// Store implements storage.Store using database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	onClose func()
}

// Option configures a Store.
type Option func(*Store)

// WithCloser registers a function run after the database handle is closed,
// e.g. to close an underlying connection pool.
func WithCloser(fn func()) Option {
	return func(s *Store) {
		s.onClose = fn
	}
}

// New wraps an open database handle. The schema must already be migrated.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle, mainly for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

func (s *Store) conn() conn {
	return conn{q: s.db, d: s.dialect}
}

// withTx runs fn in a transaction and commits only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(c conn) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(conn{q: tx, d: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InGroupTx runs fn while holding the group's write lock.
func (s *Store) InGroupTx(ctx context.Context, groupID string, fn func(tx storage.GroupTx) error) error {
	return s.withTx(ctx, func(c conn) error {
		var id string
		err := c.queryRow(ctx, "SELECT id FROM groups WHERE id = ?"+s.dialect.lockClause, groupID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("group %s: %w", groupID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock group: %w", err)
		}
		return fn(&groupTx{c: c, groupID: groupID})
	})
}

// InSplitRequestTx runs fn while holding the split request's write lock.
func (s *Store) InSplitRequestTx(ctx context.Context, requestID string, fn func(tx storage.SplitRequestTx) error) error {
	return s.withTx(ctx, func(c conn) error {
		var id string
		err := c.queryRow(ctx, "SELECT id FROM split_requests WHERE id = ?"+s.dialect.lockClause, requestID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("split request %s: %w", requestID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock split request: %w", err)
		}
		return fn(&splitRequestTx{c: c, requestID: requestID})
	})
}

// nullInt maps the zero timestamp to SQL NULL.
func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func intOrZero(v sql.NullInt64) int64 {
	if v.Valid {
		return v.Int64
	}
	return 0
}
