package client

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

// EventStream yields change events until the stream ends.
type EventStream interface {
	Recv() (*api.Event, error)
}

// Client is the console's view of the LogiTrack server. Token handling is
// internal: Login stores the pair, and expired access tokens are refreshed
// transparently.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
	ResetPassword(ctx context.Context, token, newPassword string) error

	ListUsers(ctx context.Context) ([]*api.User, error)
	CreateUser(ctx context.Context, email, password, role string) (*api.User, error)
	ChangeRole(ctx context.Context, userID, role string) (*api.User, error)
	DeleteUser(ctx context.Context, userID string) error
	SendPasswordReset(ctx context.Context, email string) error

	ListContainers(ctx context.Context, search string) ([]*api.Container, error)
	AddContainer(ctx context.Context, in *api.AddContainerRequest) (*api.Container, error)
	UpdateContainerStatus(ctx context.Context, id, status string) (*api.Container, error)
	DeleteContainer(ctx context.Context, id string) error
	ExportContainers(ctx context.Context, search string) (*api.ExportContainersResponse, error)

	ListBookings(ctx context.Context, search string) ([]*api.Booking, error)
	AddBooking(ctx context.Context, bookingNumber string, qty int, typ string) (*api.Booking, error)
	DeleteBooking(ctx context.Context, id string) error

	ListSettings(ctx context.Context, kind string) ([]*api.Setting, error)
	AddSetting(ctx context.Context, kind, name string) (*api.Setting, error)
	DeleteSetting(ctx context.Context, kind, id string) error

	Watch(ctx context.Context, collections []string) (EventStream, error)
}
