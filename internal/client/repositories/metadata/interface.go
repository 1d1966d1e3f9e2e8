package metadata

import (
	"context"
)

// Keys written by the console after an online login.
const (
	KeyUserID       = "user_id"
	KeyEmail        = "email"
	KeyRole         = "role"
	KeyPasswordHash = "password_hash"
	KeyLastSync     = "last_sync"
)

// Repository is a small key/value store for offline session state.
type Repository interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// SetAll writes every pair; a failure leaves earlier pairs written.
	SetAll(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
