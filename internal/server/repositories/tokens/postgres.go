package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db    dbx.DBTX
	table Table
}

// NewPostgresRepository constructs a repository bound to the given DBTX and table.
func NewPostgresRepository(db dbx.DBTX, table Table) *PostgresRepository {
	return &PostgresRepository{db: db, table: table}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, r.table)
	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume deletes token and returns the row it held. The DELETE is the
// claim: of two concurrent callers only one gets the row back.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE token = $1
		RETURNING user_id, expires_at
	`, r.table)
	t := &models.RefreshToken{Token: token}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&t.UserID, &t.Expires); err != nil {
		return nil, dbx.LookupError(err, common.ErrorNotFound)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
