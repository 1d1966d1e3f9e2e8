package bookings

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

func (r *PostgresRepository) Create(ctx context.Context, b *models.Booking) (*models.Booking, error) {

	query :=
		`INSERT INTO bookings (booking_number, qty, type, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, b.BookingNumber, b.Qty, b.Type, b.CreatedBy, b.CreatedAt).Scan(&b.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("booking %s %w", b.BookingNumber, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE booking_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]*models.Booking, error) {
	query := `SELECT id, booking_number, qty, type, created_by, created_at FROM bookings`
	var args []any
	if search != "" {
		query += ` WHERE booking_number ILIKE $1 OR type ILIKE $1`
		args = append(args, dbx.ContainsPattern(search))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Booking, 0)
	for rows.Next() {
		b := &models.Booking{}
		if err := rows.Scan(&b.ID, &b.BookingNumber, &b.Qty, &b.Type, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return dbx.LookupError(err, common.ErrorNotFound)
	}
	return dbx.RowsAffectedOne(res, common.ErrorNotFound)
}
