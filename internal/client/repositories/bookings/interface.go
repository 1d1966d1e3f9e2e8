package bookings

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

// Repository is the offline copy of the booking list.
type Repository interface {
	Upsert(ctx context.Context, list ...*api.Booking) error
	// List returns cached bookings whose number or type contains search,
	// newest first.
	List(ctx context.Context, search string) ([]*api.Booking, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
