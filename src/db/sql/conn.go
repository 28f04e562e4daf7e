package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// conn is the subset of a database handle the store needs. Queries are written
// once with $n placeholders, each parameter used once and in order.
type conn interface {
	exec(ctx context.Context, query string, args ...any) (int64, error)
	queryRow(ctx context.Context, query string, args ...any) rowScanner
	query(ctx context.Context, query string, args ...any) (rowIterator, error)
	begin(ctx context.Context) (tx, error)
}

type tx interface {
	conn
	commit(ctx context.Context) error
	rollback(ctx context.Context) error
}

// pgx

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxConn struct {
	q pgxQuerier
}

func (c pgxConn) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}

func (c pgxConn) queryRow(ctx context.Context, query string, args ...any) rowScanner {
	return translatingRow{c.q.QueryRow(ctx, query, args...)}
}

func (c pgxConn) query(ctx context.Context, query string, args ...any) (rowIterator, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (c pgxConn) begin(ctx context.Context) (tx, error) {
	t, err := c.q.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{pgxConn{t}, t}, nil
}

type pgxTx struct {
	pgxConn
	t pgx.Tx
}

func (t pgxTx) commit(ctx context.Context) error   { return t.t.Commit(ctx) }
func (t pgxTx) rollback(ctx context.Context) error { return t.t.Rollback(ctx) }

// database/sql

var placeholderRe = regexp.MustCompile(`\$\d+`)

func rebind(query string) string {
	return placeholderRe.ReplaceAllString(query, "?")
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlConn struct {
	q  sqlQuerier
	db *sql.DB
}

func (c sqlConn) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.q.ExecContext(ctx, rebind(query), args...)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

func (c sqlConn) queryRow(ctx context.Context, query string, args ...any) rowScanner {
	return translatingRow{c.q.QueryRowContext(ctx, rebind(query), args...)}
}

func (c sqlConn) query(ctx context.Context, query string, args ...any) (rowIterator, error) {
	rows, err := c.q.QueryContext(ctx, rebind(query), args...)
	if err != nil {
		return nil, translate(err)
	}
	return sqlRows{rows}, nil
}

func (c sqlConn) begin(ctx context.Context) (tx, error) {
	if c.db == nil {
		return nil, fmt.Errorf("nested transactions are not supported")
	}
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{sqlConn{q: t}, t}, nil
}

type sqlTx struct {
	sqlConn
	t *sql.Tx
}

func (t sqlTx) commit(context.Context) error   { return t.t.Commit() }
func (t sqlTx) rollback(context.Context) error { return t.t.Rollback() }

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

type translatingRow struct {
	row rowScanner
}

func (r translatingRow) Scan(dest ...any) error {
	return translate(r.row.Scan(dest...))
}

// translate maps driver errors onto the store's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrDuplicate, liteErr.Error())
		}
	}
	return err
}
