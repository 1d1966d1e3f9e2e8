package settings

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// table maps a kind to its table. Kinds are validated by models.ParseSettingKind,
// anything else is rejected here so no caller string reaches the query text.
func table(kind models.SettingKind) (string, error) {
	switch kind {
	case models.SettingLocations, models.SettingTypes:
		return "settings_" + string(kind), nil
	}
	return "", fmt.Errorf("%w: unknown settings kind %q", common.ErrorValidation, kind)
}

func (r *PostgresRepository) List(ctx context.Context, kind models.SettingKind) ([]*models.Setting, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name, created_at FROM %s ORDER BY created_at DESC`, t))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Setting, 0)
	for rows.Next() {
		s := &models.Setting{Kind: kind}
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, kind models.SettingKind, name string) (*models.Setting, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}

	s := &models.Setting{Kind: kind, Name: name}
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, created_at`, t)
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&s.ID, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, kind models.SettingKind, id string) error {
	t, err := table(kind)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t), id)
	if err != nil {
		return dbx.LookupError(err, common.ErrorNotFound)
	}
	return dbx.RowsAffectedOne(res, common.ErrorNotFound)
}
