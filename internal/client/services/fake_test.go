package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client with canned results.
type fakeClient struct {
	Err error // returned by every call when set

	User       *api.User
	Containers []*api.Container
	Bookings   []*api.Booking
	Settings   []*api.Setting
	Export     *api.ExportContainersResponse
	Events     []*api.Event
	LogoutErr  error

	LastSearch   string
	LastPassword string
	Deleted      []string
	Closed       bool
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error                 { f.Closed = true; return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return f.Err }

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.User, error) {
	f.LastPassword = password
	return f.User, f.Err
}

func (f *fakeClient) Logout(ctx context.Context) error { return f.LogoutErr }

func (f *fakeClient) Me(ctx context.Context) (*api.User, error) { return f.User, f.Err }

func (f *fakeClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	f.LastPassword = newPassword
	return f.Err
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]*api.User, error) {
	return []*api.User{f.User}, f.Err
}

func (f *fakeClient) CreateUser(ctx context.Context, email, password, role string) (*api.User, error) {
	f.LastPassword = password
	return &api.User{Email: email, Role: role}, f.Err
}

func (f *fakeClient) ChangeRole(ctx context.Context, userID, role string) (*api.User, error) {
	return &api.User{ID: userID, Role: role}, f.Err
}

func (f *fakeClient) DeleteUser(ctx context.Context, userID string) error {
	f.Deleted = append(f.Deleted, userID)
	return f.Err
}

func (f *fakeClient) SendPasswordReset(ctx context.Context, email string) error { return f.Err }

func (f *fakeClient) ListContainers(ctx context.Context, search string) ([]*api.Container, error) {
	f.LastSearch = search
	return f.Containers, f.Err
}

func (f *fakeClient) AddContainer(ctx context.Context, in *api.AddContainerRequest) (*api.Container, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &api.Container{ID: "new", ContainerNumber: in.ContainerNumber, Status: "Empty"}, nil
}

func (f *fakeClient) UpdateContainerStatus(ctx context.Context, id, status string) (*api.Container, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &api.Container{ID: id, Status: status}, nil
}

func (f *fakeClient) DeleteContainer(ctx context.Context, id string) error {
	f.Deleted = append(f.Deleted, id)
	return f.Err
}

func (f *fakeClient) ExportContainers(ctx context.Context, search string) (*api.ExportContainersResponse, error) {
	f.LastSearch = search
	return f.Export, f.Err
}

func (f *fakeClient) ListBookings(ctx context.Context, search string) ([]*api.Booking, error) {
	f.LastSearch = search
	return f.Bookings, f.Err
}

func (f *fakeClient) AddBooking(ctx context.Context, bookingNumber string, qty int, typ string) (*api.Booking, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &api.Booking{ID: "b-new", BookingNumber: bookingNumber, Qty: qty, Type: typ}, nil
}

func (f *fakeClient) DeleteBooking(ctx context.Context, id string) error {
	f.Deleted = append(f.Deleted, id)
	return f.Err
}

func (f *fakeClient) ListSettings(ctx context.Context, kind string) ([]*api.Setting, error) {
	return f.Settings, f.Err
}

func (f *fakeClient) AddSetting(ctx context.Context, kind, name string) (*api.Setting, error) {
	return &api.Setting{ID: "s1", Kind: kind, Name: name}, f.Err
}

func (f *fakeClient) DeleteSetting(ctx context.Context, kind, id string) error {
	f.Deleted = append(f.Deleted, kind+"/"+id)
	return f.Err
}

func (f *fakeClient) Watch(ctx context.Context, collections []string) (client.EventStream, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &fakeStream{events: f.Events}, nil
}

type fakeStream struct {
	events []*api.Event
}

func (s *fakeStream) Recv() (*api.Event, error) {
	if len(s.events) == 0 {
		return nil, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}
