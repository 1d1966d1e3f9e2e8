// Package grpc exposes the LogiTrack services over gRPC with the JSON codec
// from internal/api.
package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/server/services"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"google.golang.org/grpc"
)

type userSvc interface {
	Authenticate(ctx context.Context, accessToken string) (session.Session, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, email, password, role string) (*models.User, error)
	ChangeRole(ctx context.Context, userID, role string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type containerSvc interface {
	List(ctx context.Context, search string) ([]*models.Container, error)
	Add(ctx context.Context, in services.NewContainer) (*models.Container, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Container, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, search string) (*services.Export, error)
}

type bookingSvc interface {
	List(ctx context.Context, search string) ([]*models.Booking, error)
	Add(ctx context.Context, bookingNumber string, qty int, typ string) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
}

type settingSvc interface {
	List(ctx context.Context, kind string) ([]*models.Setting, error)
	Add(ctx context.Context, kind, name string) (*models.Setting, error)
	Delete(ctx context.Context, kind, id string) error
}

type subscriber interface {
	Subscribe(collections ...feed.Collection) *feed.Subscription
}

// Services groups the dependencies of GRPCServer.
type Services struct {
	Users      userSvc
	Containers containerSvc
	Bookings   bookingSvc
	Settings   settingSvc
	Feed       subscriber
}

// stopTimeout bounds GracefulStop before open streams are cut.
const stopTimeout = 5 * time.Second

type GRPCServer struct {
	address    string
	users      userSvc
	containers containerSvc
	bookings   bookingSvc
	settings   settingSvc
	feed       subscriber
	authz      *authorizer
	logger     logging.Logger

	// quit is closed on shutdown so Watch streams end and GracefulStop can
	// finish.
	quit     chan struct{}
	quitOnce sync.Once
}

func NewGRPCServer(a string, l logging.Logger, svc Services) *GRPCServer {
	logger := l.With("module", "grpc_server")
	return &GRPCServer{
		address:    a,
		logger:     logger,
		users:      svc.Users,
		containers: svc.Containers,
		bookings:   svc.Bookings,
		settings:   svc.Settings,
		feed:       svc.Feed,
		authz:      newAuthorizer(svc.Users, logger),
		quit:       make(chan struct{}),
	}
}

// NewServer builds a grpc.Server with the auth interceptors and the
// LogiTrack service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(s.authz.unary),
		grpc.ChainStreamInterceptor(s.authz.stream),
	)
	srv := grpc.NewServer(opts...)
	api.RegisterLogiTrackServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled. Open Watch
// streams are released first; whatever is still running after stopTimeout
// is cut off.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.quitOnce.Do(func() { close(s.quit) })

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(stopTimeout):
			s.logger.Warn(ctx, "graceful stop timed out, closing connections")
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
