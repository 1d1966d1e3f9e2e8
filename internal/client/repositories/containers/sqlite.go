package containers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, list ...*api.Container) error {
	query := `INSERT INTO containers (id, container_number, tare_weight, type, booking_number,
			location, status, last_updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET container_number = excluded.container_number,
			tare_weight = excluded.tare_weight,
			type = excluded.type,
			booking_number = excluded.booking_number,
			location = excluded.location,
			status = excluded.status,
			last_updated_by = excluded.last_updated_by,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`

	for _, c := range list {
		_, err := r.db.ExecContext(ctx, query,
			c.ID, c.ContainerNumber, c.TareWeight, c.Type, c.BookingNumber,
			c.Location, c.Status, c.LastUpdatedBy, dbx.UnixNanos(c.CreatedAt), dbx.UnixNanos(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to upsert container %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, search string) ([]*api.Container, error) {
	query := `SELECT id, container_number, tare_weight, type, booking_number, location,
			status, last_updated_by, created_at, updated_at
		FROM containers`
	var args []any
	if search != "" {
		query += ` WHERE container_number LIKE ? ESCAPE '\' OR booking_number LIKE ? ESCAPE '\'`
		p := dbx.ContainsPattern(search)
		args = append(args, p, p)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select containers: %w", err)
	}
	defer rows.Close()

	result := make([]*api.Container, 0)
	for rows.Next() {
		var (
			c                    api.Container
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&c.ID, &c.ContainerNumber, &c.TareWeight, &c.Type, &c.BookingNumber,
			&c.Location, &c.Status, &c.LastUpdatedBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan container row: %w", err)
		}
		c.CreatedAt = dbx.FromUnixNanos(createdAt)
		c.UpdatedAt = dbx.FromUnixNanos(updatedAt)
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate container rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM containers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM containers`); err != nil {
		return fmt.Errorf("failed to clear containers: %w", err)
	}
	return nil
}
