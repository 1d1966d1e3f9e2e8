// Package bookings declares storage for container bookings.
package bookings

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type Repository interface {
	// Create inserts b and fills its ID. A taken booking number yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, b *models.Booking) (*models.Booking, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// List returns bookings newest first, optionally filtered by a
	// case-insensitive substring of the booking number or type.
	List(ctx context.Context, search string) ([]*models.Booking, error)
	Delete(ctx context.Context, id string) error
}
