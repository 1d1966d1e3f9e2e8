// Package bookings keeps the console's offline copy of the booking list.
package bookings

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, list ...*api.Booking) error {
	query := `INSERT INTO bookings (id, booking_number, qty, type, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET booking_number = excluded.booking_number,
			qty = excluded.qty,
			type = excluded.type,
			created_by = excluded.created_by,
			created_at = excluded.created_at`

	for _, b := range list {
		_, err := r.db.ExecContext(ctx, query, b.ID, b.BookingNumber, b.Qty, b.Type, b.CreatedBy, dbx.UnixNanos(b.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to upsert booking %s: %w", b.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, search string) ([]*api.Booking, error) {
	query := `SELECT id, booking_number, qty, type, created_by, created_at FROM bookings`
	var args []any
	if search != "" {
		query += ` WHERE booking_number LIKE ? ESCAPE '\' OR type LIKE ? ESCAPE '\'`
		p := dbx.ContainsPattern(search)
		args = append(args, p, p)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookings: %w", err)
	}
	defer rows.Close()

	result := make([]*api.Booking, 0)
	for rows.Next() {
		var (
			b         api.Booking
			createdAt int64
		)
		if err := rows.Scan(&b.ID, &b.BookingNumber, &b.Qty, &b.Type, &b.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		b.CreatedAt = dbx.FromUnixNanos(createdAt)
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", err)
	}
	return nil
}
