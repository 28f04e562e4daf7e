package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack-server/src/ledger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists ledger records for either backend. Every read and write is
// scoped by the owning user's id.
type Store struct {
	c       conn
	dialect Dialect
	close   func()
	now     func() time.Time
}

func NewPgxStore(pool *pgxpool.Pool) *Store {
	return &Store{c: pgxConn{pool}, dialect: Postgres, close: pool.Close, now: time.Now}
}

// NewSQLStore wraps a sqlite handle. The pool is limited to one connection so
// in-memory databases are shared and writes are serialized.
func NewSQLStore(sqlDB *sql.DB) *Store {
	sqlDB.SetMaxOpenConns(1)
	return &Store{
		c:       sqlConn{q: sqlDB, db: sqlDB},
		dialect: SQLite,
		close:   func() { _ = sqlDB.Close() },
		now:     time.Now,
	}
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// ListOptions narrows expense and income listings. Limit 0 means no limit.
type ListOptions struct {
	Limit int
	Range ledger.DateRange
}

func (o ListOptions) full(n int) bool {
	return o.Limit > 0 && n >= o.Limit
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// forUpdate locks rows read inside a transaction on Postgres. sqlite already
// serializes writers.
func (s *Store) forUpdate() string {
	if s.dialect == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (s *Store) withTx(ctx context.Context, fn func(c conn) error) error {
	t, err := s.c.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(t); err != nil {
		_ = t.rollback(ctx)
		return err
	}
	if err := t.commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) deleteOwned(ctx context.Context, table, userID, id string) error {
	n, err := s.c.exec(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
