package grpc

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Methods callable without an access token.
var publicMethods = map[string]struct{}{
	api.MethodPing:          {},
	api.MethodLogin:         {},
	api.MethodRefreshToken:  {},
	api.MethodLogout:        {},
	api.MethodResetPassword: {},
}

// methodActions names the policy action each protected method requires.
var methodActions = map[string]policy.Action{
	api.MethodMe:                    policy.Authenticated,
	api.MethodListUsers:             policy.UsersList,
	api.MethodCreateUser:            policy.UsersCreate,
	api.MethodChangeRole:            policy.UsersChangeRole,
	api.MethodDeleteUser:            policy.UsersDelete,
	api.MethodSendPasswordReset:     policy.UsersSendReset,
	api.MethodListContainers:        policy.ContainersList,
	api.MethodAddContainer:          policy.ContainersCreate,
	api.MethodUpdateContainerStatus: policy.ContainersUpdateStatus,
	api.MethodDeleteContainer:       policy.ContainersDelete,
	api.MethodExportContainers:      policy.ContainersExport,
	api.MethodListBookings:          policy.BookingsList,
	api.MethodAddBooking:            policy.BookingsCreate,
	api.MethodDeleteBooking:         policy.BookingsDelete,
	api.MethodListSettings:          policy.SettingsList,
	api.MethodAddSetting:            policy.SettingsCreate,
	api.MethodDeleteSetting:         policy.SettingsDelete,
	api.MethodWatch:                 policy.FeedWatch,
}

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (session.Session, error)
}

type authorizer struct {
	users  authenticator
	rules  *policy.Rules
	logger logging.Logger
}

func newAuthorizer(users authenticator, l logging.Logger) *authorizer {
	return &authorizer{users: users, rules: policy.DefaultRules(), logger: l}
}

func accessTokenFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// check resolves the caller of method and returns ctx carrying its session.
func (a *authorizer) check(ctx context.Context, method string) (context.Context, error) {
	if _, ok := publicMethods[method]; ok {
		return ctx, nil
	}

	action, ok := methodActions[method]
	if !ok {
		return nil, status.Error(codes.Unimplemented, "unknown method")
	}

	accessToken := accessTokenFromContext(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	sess, err := a.users.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, toStatus(ctx, a.logger, err)
	}

	if err := a.rules.Police(sess.Role, action); err != nil {
		a.logger.Warn(ctx, "access denied", "method", method, "user_id", sess.UserID, "role", sess.Role)
		return nil, toStatus(ctx, a.logger, err)
	}

	return session.WithSession(ctx, sess), nil
}

func (a *authorizer) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := a.check(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (a *authorizer) stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := a.check(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &sessionStream{ServerStream: ss, ctx: ctx})
}

// sessionStream overrides Context so handlers see the resolved session.
type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *sessionStream) Context() context.Context {
	return s.ctx
}
