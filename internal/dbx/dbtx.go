// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and driver error checks.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation = "23505"
	// invalidTextRepresentation is raised when a malformed id is cast to UUID.
	invalidTextRepresentation = "22P02"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return m.Containers(tx).UpdateStatus(ctx, id, status, actor)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
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
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsInvalidText reports whether err is a PostgreSQL invalid_text_representation
// error, e.g. "abc" compared with a UUID column.
func IsInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// LookupError maps the error of a query by key. A missing row and a key that
// cannot name any row both become notFound; anything else is a db error.
func LookupError(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) || IsInvalidText(err) {
		return notFound
	}
	return fmt.Errorf("db error: %w", err)
}

// RowsAffectedOne checks that an UPDATE/DELETE touched a row, returning
// notFound otherwise.
func RowsAffectedOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a user search term into an ILIKE pattern matching
// it as a literal substring.
func ContainsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// UnixNanos encodes t for an INTEGER column; the zero time becomes 0.
func UnixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// FromUnixNanos reverses UnixNanos and returns UTC.
func FromUnixNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
