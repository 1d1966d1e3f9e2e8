package containers

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

// Repository is the offline copy of the container list.
type Repository interface {
	// Upsert inserts or replaces containers by id.
	Upsert(ctx context.Context, list ...*api.Container) error

	// List returns cached containers whose number or booking reference
	// contains search, newest first.
	List(ctx context.Context, search string) ([]*api.Container, error)

	// Delete removes a container. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	// Clear empties the cache.
	Clear(ctx context.Context) error
}
