// Package metadata stores the offline session (who logged in last, their
// role and a password verifier) in the local cache database.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/logitrack/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetAll(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO metadata (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, values[k])
		if err != nil {
			return fmt.Errorf("failed to write %q: %w", k, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
