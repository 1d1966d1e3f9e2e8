package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/server/services"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	result, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}

	s.logger.Info(ctx, "Signed in", "user_id", result.User.ID, "role", result.User.Role)
	return &api.LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         toUser(result.User),
	}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, req *api.MeRequest) (*api.User, error) {
	u, err := s.users.Me(ctx)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toUser(u), nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.Empty, error) {
	if err := s.users.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *api.ListUsersRequest) (*api.ListUsersResponse, error) {
	list, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.ListUsersResponse{Users: convert(list, toUser)}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.User, error) {
	u, err := s.users.CreateUser(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toUser(u), nil
}

func (s *GRPCServer) ChangeRole(ctx context.Context, req *api.ChangeRoleRequest) (*api.User, error) {
	u, err := s.users.ChangeRole(ctx, req.UserID, req.Role)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toUser(u), nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.Empty, error) {
	if err := s.users.DeleteUser(ctx, req.UserID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SendPasswordReset(ctx context.Context, req *api.SendPasswordResetRequest) (*api.Empty, error) {
	if err := s.users.SendPasswordReset(ctx, req.Email); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListContainers(ctx context.Context, req *api.ListContainersRequest) (*api.ListContainersResponse, error) {
	list, err := s.containers.List(ctx, req.Search)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.ListContainersResponse{Containers: convert(list, toContainer)}, nil
}

func (s *GRPCServer) AddContainer(ctx context.Context, req *api.AddContainerRequest) (*api.Container, error) {
	c, err := s.containers.Add(ctx, services.NewContainer{
		ContainerNumber: req.ContainerNumber,
		TareWeight:      req.TareWeight,
		Type:            req.Type,
		BookingNumber:   req.BookingNumber,
		Location:        req.Location,
	})
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toContainer(c), nil
}

func (s *GRPCServer) UpdateContainerStatus(ctx context.Context, req *api.UpdateStatusRequest) (*api.Container, error) {
	c, err := s.containers.UpdateStatus(ctx, req.ID, req.Status)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toContainer(c), nil
}

func (s *GRPCServer) DeleteContainer(ctx context.Context, req *api.DeleteContainerRequest) (*api.Empty, error) {
	if err := s.containers.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ExportContainers(ctx context.Context, req *api.ExportContainersRequest) (*api.ExportContainersResponse, error) {
	e, err := s.containers.Export(ctx, req.Search)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.ExportContainersResponse{Key: e.Key, URL: e.URL, Rows: e.Rows, ExpiresAt: e.ExpiresAt}, nil
}

func (s *GRPCServer) ListBookings(ctx context.Context, req *api.ListBookingsRequest) (*api.ListBookingsResponse, error) {
	list, err := s.bookings.List(ctx, req.Search)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.ListBookingsResponse{Bookings: convert(list, toBooking)}, nil
}

func (s *GRPCServer) AddBooking(ctx context.Context, req *api.AddBookingRequest) (*api.Booking, error) {
	b, err := s.bookings.Add(ctx, req.BookingNumber, req.Qty, req.Type)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toBooking(b), nil
}

func (s *GRPCServer) DeleteBooking(ctx context.Context, req *api.DeleteBookingRequest) (*api.Empty, error) {
	if err := s.bookings.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListSettings(ctx context.Context, req *api.ListSettingsRequest) (*api.ListSettingsResponse, error) {
	list, err := s.settings.List(ctx, req.Kind)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.ListSettingsResponse{Settings: convert(list, toSetting)}, nil
}

func (s *GRPCServer) AddSetting(ctx context.Context, req *api.AddSettingRequest) (*api.Setting, error) {
	st, err := s.settings.Add(ctx, req.Kind, req.Name)
	if err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return toSetting(st), nil
}

func (s *GRPCServer) DeleteSetting(ctx context.Context, req *api.DeleteSettingRequest) (*api.Empty, error) {
	if err := s.settings.Delete(ctx, req.Kind, req.ID); err != nil {
		return nil, toStatus(ctx, s.logger, err)
	}
	return &api.Empty{}, nil
}

// Watch streams change events. The subscription is taken before the synced
// marker goes out, so a client that lists after "synced" misses nothing.
func (s *GRPCServer) Watch(req *api.WatchRequest, stream grpc.ServerStreamingServer[api.Event]) error {
	ctx := stream.Context()

	sess, _ := session.FromContext(ctx)
	collections, err := feed.Readable(s.authz.rules, sess.Role, req.Collections)
	if err != nil {
		return toStatus(ctx, s.logger, err)
	}

	sub := s.feed.Subscribe(collections...)
	defer sub.Close()

	s.logger.Info(ctx, "Watch started", "user_id", sess.UserID, "collections", collections)

	if err := stream.Send(marker(feed.OpSynced)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.quit:
			return status.Error(codes.Unavailable, "server is shutting down")
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			if sub.Lagged() {
				if err := stream.Send(marker(feed.OpLagged)); err != nil {
					return err
				}
			}
			if err := stream.Send(toEvent(e)); err != nil {
				return err
			}
		}
	}
}

func marker(op feed.Op) *api.Event {
	return &api.Event{Op: string(op), At: time.Now().UTC()}
}

func convert[T, R any](in []*T, fn func(*T) *R) []*R {
	out := make([]*R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func toUser(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func toContainer(c *models.Container) *api.Container {
	return &api.Container{
		ID:              c.ID,
		ContainerNumber: c.ContainerNumber,
		TareWeight:      c.TareWeight,
		Type:            c.Type,
		BookingNumber:   c.BookingNumber,
		Location:        c.Location,
		Status:          string(c.Status),
		LastUpdatedBy:   c.LastUpdatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toBooking(b *models.Booking) *api.Booking {
	return &api.Booking{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		Qty:           b.Qty,
		Type:          b.Type,
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt,
	}
}

func toSetting(st *models.Setting) *api.Setting {
	return &api.Setting{
		ID:        st.ID,
		Kind:      string(st.Kind),
		Name:      st.Name,
		CreatedAt: st.CreatedAt,
	}
}

func toEvent(e feed.Event) *api.Event {
	return &api.Event{
		Collection: string(e.Collection),
		Op:         string(e.Op),
		ID:         e.ID,
		Data:       e.Data,
		Actor:      e.Actor,
		At:         e.At,
	}
}
