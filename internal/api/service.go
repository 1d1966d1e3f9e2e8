package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "logitrack.v1.LogiTrack"

// Full method names, as seen by interceptors.
const (
	MethodPing                  = "/" + ServiceName + "/Ping"
	MethodLogin                 = "/" + ServiceName + "/Login"
	MethodRefreshToken          = "/" + ServiceName + "/RefreshToken"
	MethodLogout                = "/" + ServiceName + "/Logout"
	MethodMe                    = "/" + ServiceName + "/Me"
	MethodResetPassword         = "/" + ServiceName + "/ResetPassword"
	MethodListUsers             = "/" + ServiceName + "/ListUsers"
	MethodCreateUser            = "/" + ServiceName + "/CreateUser"
	MethodChangeRole            = "/" + ServiceName + "/ChangeRole"
	MethodDeleteUser            = "/" + ServiceName + "/DeleteUser"
	MethodSendPasswordReset     = "/" + ServiceName + "/SendPasswordReset"
	MethodListContainers        = "/" + ServiceName + "/ListContainers"
	MethodAddContainer          = "/" + ServiceName + "/AddContainer"
	MethodUpdateContainerStatus = "/" + ServiceName + "/UpdateContainerStatus"
	MethodDeleteContainer       = "/" + ServiceName + "/DeleteContainer"
	MethodExportContainers      = "/" + ServiceName + "/ExportContainers"
	MethodListBookings          = "/" + ServiceName + "/ListBookings"
	MethodAddBooking            = "/" + ServiceName + "/AddBooking"
	MethodDeleteBooking         = "/" + ServiceName + "/DeleteBooking"
	MethodListSettings          = "/" + ServiceName + "/ListSettings"
	MethodAddSetting            = "/" + ServiceName + "/AddSetting"
	MethodDeleteSetting         = "/" + ServiceName + "/DeleteSetting"
	MethodWatch                 = "/" + ServiceName + "/Watch"
)

// LogiTrackServer is implemented by the server's gRPC handler.
type LogiTrackServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	Me(context.Context, *MeRequest) (*User, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)

	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	ChangeRole(context.Context, *ChangeRoleRequest) (*User, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error)
	SendPasswordReset(context.Context, *SendPasswordResetRequest) (*Empty, error)

	ListContainers(context.Context, *ListContainersRequest) (*ListContainersResponse, error)
	AddContainer(context.Context, *AddContainerRequest) (*Container, error)
	UpdateContainerStatus(context.Context, *UpdateStatusRequest) (*Container, error)
	DeleteContainer(context.Context, *DeleteContainerRequest) (*Empty, error)
	ExportContainers(context.Context, *ExportContainersRequest) (*ExportContainersResponse, error)

	ListBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
	AddBooking(context.Context, *AddBookingRequest) (*Booking, error)
	DeleteBooking(context.Context, *DeleteBookingRequest) (*Empty, error)

	ListSettings(context.Context, *ListSettingsRequest) (*ListSettingsResponse, error)
	AddSetting(context.Context, *AddSettingRequest) (*Setting, error)
	DeleteSetting(context.Context, *DeleteSettingRequest) (*Empty, error)

	Watch(*WatchRequest, grpc.ServerStreamingServer[Event]) error
}

func RegisterLogiTrackServer(s grpc.ServiceRegistrar, srv LogiTrackServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the descriptor entry for one request/response method.
func unary[Req, Resp any](name string, call func(LogiTrackServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LogiTrackServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LogiTrackServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	m := new(WatchRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LogiTrackServer).Watch(m, &grpc.GenericServerStream[WatchRequest, Event]{ServerStream: stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LogiTrackServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", LogiTrackServer.Ping),
		unary("Login", LogiTrackServer.Login),
		unary("RefreshToken", LogiTrackServer.RefreshToken),
		unary("Logout", LogiTrackServer.Logout),
		unary("Me", LogiTrackServer.Me),
		unary("ResetPassword", LogiTrackServer.ResetPassword),
		unary("ListUsers", LogiTrackServer.ListUsers),
		unary("CreateUser", LogiTrackServer.CreateUser),
		unary("ChangeRole", LogiTrackServer.ChangeRole),
		unary("DeleteUser", LogiTrackServer.DeleteUser),
		unary("SendPasswordReset", LogiTrackServer.SendPasswordReset),
		unary("ListContainers", LogiTrackServer.ListContainers),
		unary("AddContainer", LogiTrackServer.AddContainer),
		unary("UpdateContainerStatus", LogiTrackServer.UpdateContainerStatus),
		unary("DeleteContainer", LogiTrackServer.DeleteContainer),
		unary("ExportContainers", LogiTrackServer.ExportContainers),
		unary("ListBookings", LogiTrackServer.ListBookings),
		unary("AddBooking", LogiTrackServer.AddBooking),
		unary("DeleteBooking", LogiTrackServer.DeleteBooking),
		unary("ListSettings", LogiTrackServer.ListSettings),
		unary("AddSetting", LogiTrackServer.AddSetting),
		unary("DeleteSetting", LogiTrackServer.DeleteSetting),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "logitrack/v1/logitrack.json",
}
