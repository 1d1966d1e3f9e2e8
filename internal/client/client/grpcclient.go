package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type refresher interface {
	RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.RefreshTokenResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.Client
	refresher   refresher

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh swaps the refresh token for a new pair. It reports false when
// there is nothing to refresh with.
func (s *GRPCClient) refresh(ctx context.Context) (bool, error) {
	_, refreshToken := s.tokens()
	if refreshToken == "" {
		return false, nil
	}

	resp, err := s.refresher.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return false, err
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return true, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, _ := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)

	if err == nil || !isTokenExpired(err) || method == api.MethodRefreshToken {
		return err
	}

	refreshed, rerr := s.refresh(ctx)
	if rerr != nil {
		return rerr
	}
	if !refreshed {
		return err
	}

	// tokens refreshed, retrying with the new access token
	accessToken, _ = s.tokens()
	return invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	accessToken, _ := s.tokens()
	return streamer(withAccessToken(ctx, accessToken), desc, cc, method, opts...)
}

func NewLogiTrackClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// InitGRPCClient creates the connection. Extra options are appended to the
// defaults (insecure transport, token interceptors).
func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewClient(conn)
	s.refresher = s.client
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*api.User, error) {

	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return resp.User, nil

}

// Logout revokes the refresh token on the server and forgets both tokens.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refreshToken := s.tokens()
	s.setTokens("", "")
	if refreshToken == "" {
		return nil
	}

	if _, err := s.client.Logout(ctx, &api.LogoutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	u, err := s.client.Me(ctx, &api.MeRequest{})
	return u, s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.ResetPassword(ctx, &api.ResetPasswordRequest{Token: token, NewPassword: newPassword})
	return s.mapError(err)
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]*api.User, error) {
	resp, err := s.client.ListUsers(ctx, &api.ListUsersRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) CreateUser(ctx context.Context, email, password, role string) (*api.User, error) {
	u, err := s.client.CreateUser(ctx, &api.CreateUserRequest{Email: email, Password: password, Role: role})
	return u, s.mapError(err)
}

func (s *GRPCClient) ChangeRole(ctx context.Context, userID, role string) (*api.User, error) {
	u, err := s.client.ChangeRole(ctx, &api.ChangeRoleRequest{UserID: userID, Role: role})
	return u, s.mapError(err)
}

func (s *GRPCClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.client.DeleteUser(ctx, &api.DeleteUserRequest{UserID: userID})
	return s.mapError(err)
}

func (s *GRPCClient) SendPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.SendPasswordReset(ctx, &api.SendPasswordResetRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) ListContainers(ctx context.Context, search string) ([]*api.Container, error) {
	resp, err := s.client.ListContainers(ctx, &api.ListContainersRequest{Search: search})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Containers, nil
}

func (s *GRPCClient) AddContainer(ctx context.Context, in *api.AddContainerRequest) (*api.Container, error) {
	c, err := s.client.AddContainer(ctx, in)
	return c, s.mapError(err)
}

func (s *GRPCClient) UpdateContainerStatus(ctx context.Context, id, status string) (*api.Container, error) {
	c, err := s.client.UpdateContainerStatus(ctx, &api.UpdateStatusRequest{ID: id, Status: status})
	return c, s.mapError(err)
}

func (s *GRPCClient) DeleteContainer(ctx context.Context, id string) error {
	_, err := s.client.DeleteContainer(ctx, &api.DeleteContainerRequest{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) ExportContainers(ctx context.Context, search string) (*api.ExportContainersResponse, error) {
	e, err := s.client.ExportContainers(ctx, &api.ExportContainersRequest{Search: search})
	return e, s.mapError(err)
}

func (s *GRPCClient) ListBookings(ctx context.Context, search string) ([]*api.Booking, error) {
	resp, err := s.client.ListBookings(ctx, &api.ListBookingsRequest{Search: search})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Bookings, nil
}

func (s *GRPCClient) AddBooking(ctx context.Context, bookingNumber string, qty int, typ string) (*api.Booking, error) {
	b, err := s.client.AddBooking(ctx, &api.AddBookingRequest{BookingNumber: bookingNumber, Qty: qty, Type: typ})
	return b, s.mapError(err)
}

func (s *GRPCClient) DeleteBooking(ctx context.Context, id string) error {
	_, err := s.client.DeleteBooking(ctx, &api.DeleteBookingRequest{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) ListSettings(ctx context.Context, kind string) ([]*api.Setting, error) {
	resp, err := s.client.ListSettings(ctx, &api.ListSettingsRequest{Kind: kind})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Settings, nil
}

func (s *GRPCClient) AddSetting(ctx context.Context, kind, name string) (*api.Setting, error) {
	st, err := s.client.AddSetting(ctx, &api.AddSettingRequest{Kind: kind, Name: name})
	return st, s.mapError(err)
}

func (s *GRPCClient) DeleteSetting(ctx context.Context, kind, id string) error {
	_, err := s.client.DeleteSetting(ctx, &api.DeleteSettingRequest{Kind: kind, ID: id})
	return s.mapError(err)
}

// Watch opens the change stream. Streams don't pass through the refresh
// retry, so an authenticated unary call goes first to renew an expired
// access token.
func (s *GRPCClient) Watch(ctx context.Context, collections []string) (EventStream, error) {
	if _, err := s.Me(ctx); err != nil {
		return nil, err
	}

	stream, err := s.client.Watch(ctx, &api.WatchRequest{Collections: collections})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &eventStream{stream: stream, mapError: s.mapError}, nil
}

type eventStream struct {
	stream   grpc.ServerStreamingClient[api.Event]
	mapError func(error) error
}

func (e *eventStream) Recv() (*api.Event, error) {
	ev, err := e.stream.Recv()
	if err != nil {
		return nil, e.mapError(err)
	}
	return ev, nil
}

// mapError turns gRPC statuses into the package's sentinel errors. Request
// problems keep the server's message, which is meant for the user.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists:
		return errors.New(st.Message())
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
