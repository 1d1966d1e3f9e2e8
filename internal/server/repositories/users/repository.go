// Package users declares storage for user records and their credentials.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List orders by last login, most recent first; never-logged-in users last.
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
