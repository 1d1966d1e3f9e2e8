// Package tokens stores opaque, expiring tokens bound to a user: refresh
// tokens issued at login and password reset tokens.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

// Table selects which token table a repository works on.
type Table string

const (
	RefreshTokens  Table = "refresh_tokens"
	PasswordResets Table = "password_resets"
)

// Repository defines operations for issuing, retrieving and revoking tokens.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume atomically removes a token and returns it; common.ErrorNotFound
	// when absent or already consumed.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
