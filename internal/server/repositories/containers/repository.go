// Package containers declares storage for shipping containers.
package containers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type Repository interface {
	// Create inserts c and fills its ID and timestamps. A taken container
	// number yields common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Container) (*models.Container, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Container, error)
	// List returns containers newest first. A non-empty search matches the
	// container or booking number as a case-insensitive substring.
	List(ctx context.Context, search string) ([]*models.Container, error)
	UpdateStatus(ctx context.Context, id string, status models.ContainerStatus, by string, at time.Time) (*models.Container, error)
	Delete(ctx context.Context, id string) error
}
