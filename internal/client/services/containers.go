package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
	"github.com/dmitrijs2005/logitrack/internal/filex"
	"github.com/dmitrijs2005/logitrack/internal/netx"
)

// Source tells whether a listing came from the server or the local cache.
type Source int

const (
	SourceServer Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "server"
}

type ContainerService interface {
	List(ctx context.Context, search string) ([]*api.Container, Source, error)
	Add(ctx context.Context, in *api.AddContainerRequest) (*api.Container, error)
	SetStatus(ctx context.Context, id, status string) (*api.Container, error)
	Delete(ctx context.Context, id string) error
	// Export asks the server for a CSV and downloads it into dir.
	Export(ctx context.Context, search, dir string) (path string, rows int, err error)
}

type containerService struct {
	client     client.Client
	db         *sql.DB
	httpClient *http.Client
	now        func() time.Time
}

func NewContainerService(c client.Client, db *sql.DB) ContainerService {
	return &containerService{client: c, db: db, httpClient: http.DefaultClient, now: time.Now}
}

func (s *containerService) List(ctx context.Context, search string) ([]*api.Container, Source, error) {
	list, err := s.client.ListContainers(ctx, search)
	if errors.Is(err, client.ErrUnavailable) {
		cached, cerr := containers.NewSQLiteRepository(s.db).List(ctx, search)
		if cerr != nil {
			return nil, SourceCache, fmt.Errorf("cache error: %w", cerr)
		}
		return cached, SourceCache, nil
	}
	if err != nil {
		return nil, SourceServer, err
	}

	if err := s.store(ctx, search == "", list); err != nil {
		return nil, SourceServer, fmt.Errorf("cache error: %w", err)
	}
	return list, SourceServer, nil
}

// store upserts list; a full listing replaces the cache so remote deletes
// are not kept forever.
func (s *containerService) store(ctx context.Context, replace bool, list []*api.Container) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := containers.NewSQLiteRepository(tx)
		if replace {
			if err := repo.Clear(ctx); err != nil {
				return err
			}
		}
		return repo.Upsert(ctx, list...)
	})
}

func (s *containerService) Add(ctx context.Context, in *api.AddContainerRequest) (*api.Container, error) {
	c, err := s.client.AddContainer(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := containers.NewSQLiteRepository(s.db).Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("cache error: %w", err)
	}
	return c, nil
}

func (s *containerService) SetStatus(ctx context.Context, id, status string) (*api.Container, error) {
	c, err := s.client.UpdateContainerStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if err := containers.NewSQLiteRepository(s.db).Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("cache error: %w", err)
	}
	return c, nil
}

func (s *containerService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteContainer(ctx, id); err != nil {
		return err
	}
	if err := containers.NewSQLiteRepository(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}
	return nil
}

func (s *containerService) Export(ctx context.Context, search, dir string) (string, int, error) {
	resp, err := s.client.ExportContainers(ctx, search)
	if err != nil {
		return "", 0, err
	}

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, filex.StampedName("containers", "csv", s.now()))
	if _, err := netx.DownloadToFile(ctx, s.httpClient, resp.URL, path); err != nil {
		return "", 0, fmt.Errorf("download error: %w", err)
	}
	return path, resp.Rows, nil
}
