package services

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
)

// AdminService manages accounts and the location/type lists. None of it is
// cached: these screens need the server.
type AdminService interface {
	Me(ctx context.Context) (*api.User, error)
	ListUsers(ctx context.Context) ([]*api.User, error)
	CreateUser(ctx context.Context, email string, password []byte, role string) (*api.User, error)
	ChangeRole(ctx context.Context, userID, role string) (*api.User, error)
	DeleteUser(ctx context.Context, userID string) error
	SendPasswordReset(ctx context.Context, email string) error

	ListSettings(ctx context.Context, kind string) ([]*api.Setting, error)
	AddSetting(ctx context.Context, kind, name string) (*api.Setting, error)
	DeleteSetting(ctx context.Context, kind, id string) error
}

type adminService struct {
	client client.Client
}

func NewAdminService(c client.Client) AdminService {
	return &adminService{client: c}
}

func (s *adminService) Me(ctx context.Context) (*api.User, error) {
	return s.client.Me(ctx)
}

func (s *adminService) ListUsers(ctx context.Context) ([]*api.User, error) {
	return s.client.ListUsers(ctx)
}

func (s *adminService) CreateUser(ctx context.Context, email string, password []byte, role string) (*api.User, error) {
	return s.client.CreateUser(ctx, email, string(password), role)
}

func (s *adminService) ChangeRole(ctx context.Context, userID, role string) (*api.User, error) {
	return s.client.ChangeRole(ctx, userID, role)
}

func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	return s.client.DeleteUser(ctx, userID)
}

func (s *adminService) SendPasswordReset(ctx context.Context, email string) error {
	return s.client.SendPasswordReset(ctx, email)
}

func (s *adminService) ListSettings(ctx context.Context, kind string) ([]*api.Setting, error) {
	return s.client.ListSettings(ctx, kind)
}

func (s *adminService) AddSetting(ctx context.Context, kind, name string) (*api.Setting, error) {
	return s.client.AddSetting(ctx, kind, name)
}

func (s *adminService) DeleteSetting(ctx context.Context, kind, id string) error {
	return s.client.DeleteSetting(ctx, kind, id)
}
