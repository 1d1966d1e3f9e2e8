// Package settings declares storage for the drop-down value lists
// (locations and container types).
package settings

import (
	"context"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, kind models.SettingKind) ([]*models.Setting, error)
	Create(ctx context.Context, kind models.SettingKind, name string) (*models.Setting, error)
	Delete(ctx context.Context, kind models.SettingKind, id string) error
}
