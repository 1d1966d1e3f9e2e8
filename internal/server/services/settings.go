package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/repomanager"
)

// SettingService manages the location and container type drop-downs.
type SettingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rules       *policy.Rules
	events      Publisher
}

func NewSettingService(db *sql.DB, m repomanager.RepositoryManager, events Publisher) *SettingService {
	return &SettingService{db: db, repomanager: m, rules: policy.DefaultRules(), events: events}
}

func collectionOf(kind models.SettingKind) feed.Collection {
	if kind == models.SettingTypes {
		return feed.Types
	}
	return feed.Locations
}

func (s *SettingService) List(ctx context.Context, kind string) ([]*models.Setting, error) {
	if _, err := authorize(ctx, s.rules, policy.SettingsList); err != nil {
		return nil, err
	}
	k, err := models.ParseSettingKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Settings(s.db).List(ctx, k)
}

func (s *SettingService) Add(ctx context.Context, kind, name string) (*models.Setting, error) {
	if _, err := authorize(ctx, s.rules, policy.SettingsCreate); err != nil {
		return nil, err
	}
	k, err := models.ParseSettingKind(kind)
	if err != nil {
		return nil, err
	}
	name, err = required("name", name)
	if err != nil {
		return nil, err
	}

	st, err := s.repomanager.Settings(s.db).Create(ctx, k, name)
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, collectionOf(k), feed.OpCreated, st.ID, st)
	return st, nil
}

func (s *SettingService) Delete(ctx context.Context, kind, id string) error {
	if _, err := authorize(ctx, s.rules, policy.SettingsDelete); err != nil {
		return err
	}
	k, err := models.ParseSettingKind(kind)
	if err != nil {
		return err
	}
	if err := s.repomanager.Settings(s.db).Delete(ctx, k, id); err != nil {
		return err
	}

	s.events.Emit(ctx, collectionOf(k), feed.OpDeleted, id, nil)
	return nil
}
