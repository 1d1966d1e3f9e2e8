package api

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
)

// Client is a typed stub for the LogiTrack service. Every call selects the
// JSON codec, so no dial option is needed for it.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *Client) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *Client) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodMe, in, opts)
}

func (c *Client) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResetPassword, in, opts)
}

func (c *Client) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, MethodListUsers, in, opts)
}

func (c *Client) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodCreateUser, in, opts)
}

func (c *Client) ChangeRole(ctx context.Context, in *ChangeRoleRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodChangeRole, in, opts)
}

func (c *Client) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteUser, in, opts)
}

func (c *Client) SendPasswordReset(ctx context.Context, in *SendPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSendPasswordReset, in, opts)
}

func (c *Client) ListContainers(ctx context.Context, in *ListContainersRequest, opts ...grpc.CallOption) (*ListContainersResponse, error) {
	return invoke[ListContainersResponse](ctx, c.cc, MethodListContainers, in, opts)
}

func (c *Client) AddContainer(ctx context.Context, in *AddContainerRequest, opts ...grpc.CallOption) (*Container, error) {
	return invoke[Container](ctx, c.cc, MethodAddContainer, in, opts)
}

func (c *Client) UpdateContainerStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*Container, error) {
	return invoke[Container](ctx, c.cc, MethodUpdateContainerStatus, in, opts)
}

func (c *Client) DeleteContainer(ctx context.Context, in *DeleteContainerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteContainer, in, opts)
}

func (c *Client) ExportContainers(ctx context.Context, in *ExportContainersRequest, opts ...grpc.CallOption) (*ExportContainersResponse, error) {
	return invoke[ExportContainersResponse](ctx, c.cc, MethodExportContainers, in, opts)
}

func (c *Client) ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c.cc, MethodListBookings, in, opts)
}

func (c *Client) AddBooking(ctx context.Context, in *AddBookingRequest, opts ...grpc.CallOption) (*Booking, error) {
	return invoke[Booking](ctx, c.cc, MethodAddBooking, in, opts)
}

func (c *Client) DeleteBooking(ctx context.Context, in *DeleteBookingRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteBooking, in, opts)
}

func (c *Client) ListSettings(ctx context.Context, in *ListSettingsRequest, opts ...grpc.CallOption) (*ListSettingsResponse, error) {
	return invoke[ListSettingsResponse](ctx, c.cc, MethodListSettings, in, opts)
}

func (c *Client) AddSetting(ctx context.Context, in *AddSettingRequest, opts ...grpc.CallOption) (*Setting, error) {
	return invoke[Setting](ctx, c.cc, MethodAddSetting, in, opts)
}

func (c *Client) DeleteSetting(ctx context.Context, in *DeleteSettingRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteSetting, in, opts)
}

// Watch opens the change stream. The first event is the "synced" marker.
func (c *Client) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodWatch, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, Event]{ClientStream: stream}
	// io.EOF means the server already ended the stream; Recv reports why.
	if err := x.ClientStream.SendMsg(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
