package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
)

// ObjectStore keeps exported reports. *ExportStore implements it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

type NewContainer struct {
	ContainerNumber string
	TareWeight      string
	Type            string
	BookingNumber   string
	Location        string
}

type ContainerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rules       *policy.Rules
	events      Publisher
	store       ObjectStore
	now         func() time.Time
}

func NewContainerService(db *sql.DB, m repomanager.RepositoryManager, events Publisher, store ObjectStore) *ContainerService {
	return &ContainerService{
		db:          db,
		repomanager: m,
		rules:       policy.DefaultRules(),
		events:      events,
		store:       store,
		now:         time.Now,
	}
}

func (s *ContainerService) List(ctx context.Context, search string) ([]*models.Container, error) {
	if _, err := authorize(ctx, s.rules, policy.ContainersList); err != nil {
		return nil, err
	}
	return s.repomanager.Containers(s.db).List(ctx, strings.TrimSpace(search))
}

// Add registers a container in Pending status. Numbers and type are
// stored upper-cased; a taken container number is rejected.
func (s *ContainerService) Add(ctx context.Context, in NewContainer) (*models.Container, error) {
	if _, err := authorize(ctx, s.rules, policy.ContainersCreate); err != nil {
		return nil, err
	}

	number, err := required("container number", in.ContainerNumber)
	if err != nil {
		return nil, err
	}
	number = strings.ToUpper(number)

	repo := s.repomanager.Containers(s.db)
	exists, err := repo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("container %s %w", number, common.ErrorAlreadyExists)
	}

	c, err := repo.Create(ctx, &models.Container{
		ContainerNumber: number,
		TareWeight:      strings.TrimSpace(in.TareWeight),
		Type:            strings.ToUpper(strings.TrimSpace(in.Type)),
		BookingNumber:   strings.ToUpper(strings.TrimSpace(in.BookingNumber)),
		Location:        strings.TrimSpace(in.Location),
		Status:          models.StatusPending,
		LastUpdatedBy:   session.Actor(ctx),
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, feed.Containers, feed.OpCreated, c.ID, c)
	return c, nil
}

func (s *ContainerService) UpdateStatus(ctx context.Context, id, status string) (*models.Container, error) {
	if _, err := authorize(ctx, s.rules, policy.ContainersUpdateStatus); err != nil {
		return nil, err
	}
	st, err := models.ParseContainerStatus(status)
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Containers(s.db).UpdateStatus(ctx, id, st, session.Actor(ctx), s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, feed.Containers, feed.OpUpdated, c.ID, c)
	return c, nil
}

func (s *ContainerService) Delete(ctx context.Context, id string) error {
	if _, err := authorize(ctx, s.rules, policy.ContainersDelete); err != nil {
		return err
	}
	if err := s.repomanager.Containers(s.db).Delete(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, feed.Containers, feed.OpDeleted, id, nil)
	return nil
}

// Export renders the filtered container list as CSV, uploads it and
// returns a download link valid for 15 minutes.
func (s *ContainerService) Export(ctx context.Context, search string) (*Export, error) {
	if _, err := authorize(ctx, s.rules, policy.ContainersExport); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Containers(s.db).List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	body, err := containersCSV(list)
	if err != nil {
		return nil, fmt.Errorf("error rendering csv: %w", err)
	}

	now := s.now().UTC()
	key := GetRandomStorageKey(now)
	url, err := s.store.Put(ctx, key, body)
	if err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	return &Export{Key: key, URL: url, Rows: len(list), ExpiresAt: now.Add(exportURLValidity)}, nil
}
