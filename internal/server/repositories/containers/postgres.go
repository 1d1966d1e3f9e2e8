package containers

import (
	"context"
	"fmt"
	"time"

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

const columns = `id, container_number, tare_weight, type, booking_number, location, status, last_updated_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanContainer(row scanner) (*models.Container, error) {
	c := &models.Container{}
	err := row.Scan(&c.ID, &c.ContainerNumber, &c.TareWeight, &c.Type, &c.BookingNumber,
		&c.Location, &c.Status, &c.LastUpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Container) (*models.Container, error) {

	query :=
		`INSERT INTO containers (container_number, tare_weight, type, booking_number, location, status, last_updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ContainerNumber, c.TareWeight, c.Type, c.BookingNumber, c.Location, c.Status, c.LastUpdatedBy, c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("container %s %w", c.ContainerNumber, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM containers WHERE container_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Container, error) {
	c, err := scanContainer(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM containers WHERE id = $1`, id))
	if err != nil {
		return nil, dbx.LookupError(err, common.ErrorNotFound)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]*models.Container, error) {
	query := `SELECT ` + columns + ` FROM containers`
	var args []any
	if search != "" {
		query += ` WHERE container_number ILIKE $1 OR booking_number ILIKE $1`
		args = append(args, dbx.ContainsPattern(search))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Container, 0)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.ContainerStatus, by string, at time.Time) (*models.Container, error) {

	query :=
		`UPDATE containers SET status = $2, last_updated_by = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING ` + columns

	c, err := scanContainer(r.db.QueryRowContext(ctx, query, id, status, by, at))
	if err != nil {
		return nil, dbx.LookupError(err, common.ErrorNotFound)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM containers WHERE id = $1`, id)
	if err != nil {
		return dbx.LookupError(err, common.ErrorNotFound)
	}
	return dbx.RowsAffectedOne(res, common.ErrorNotFound)
}
