package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/logging"
)

const (
	collContainers = "containers"
	collBookings   = "bookings"

	opCreated = "created"
	opUpdated = "updated"
	opDeleted = "deleted"
	opSynced  = "synced"
	opLagged  = "lagged"
)

// WatchService follows the live feed and keeps the cache current.
type WatchService interface {
	// Run streams events to onEvent until ctx ends or the server closes the
	// stream. Container and booking deltas are applied to the cache first;
	// synced and lagged markers trigger a full reload of those listings.
	Run(ctx context.Context, collections []string, onEvent func(*api.Event)) error
}

type watchService struct {
	client     client.Client
	containers ContainerService
	bookings   BookingService
	cacheC     containers.Repository
	cacheB     bookings.Repository
	logger     logging.Logger
}

func NewWatchService(c client.Client, cs ContainerService, bs BookingService,
	cc containers.Repository, bc bookings.Repository, logger logging.Logger) WatchService {
	return &watchService{client: c, containers: cs, bookings: bs, cacheC: cc, cacheB: bc, logger: logger}
}

func (s *watchService) Run(ctx context.Context, collections []string, onEvent func(*api.Event)) error {
	stream, err := s.client.Watch(ctx, collections)
	if err != nil {
		return err
	}

	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.apply(ctx, collections, ev); err != nil {
			s.logger.Warn(ctx, "cache update failed", "collection", ev.Collection, "op", ev.Op, "error", err)
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
}

func (s *watchService) apply(ctx context.Context, collections []string, ev *api.Event) error {
	switch ev.Op {
	case opSynced, opLagged:
		return s.reload(ctx, collections)
	case opCreated, opUpdated, opDeleted:
	default:
		return nil
	}

	switch ev.Collection {
	case collContainers:
		if ev.Op == opDeleted {
			return s.cacheC.Delete(ctx, ev.ID)
		}
		var c api.Container
		if err := json.Unmarshal(ev.Data, &c); err != nil {
			return fmt.Errorf("decode container: %w", err)
		}
		return s.cacheC.Upsert(ctx, &c)
	case collBookings:
		if ev.Op == opDeleted {
			return s.cacheB.Delete(ctx, ev.ID)
		}
		var b api.Booking
		if err := json.Unmarshal(ev.Data, &b); err != nil {
			return fmt.Errorf("decode booking: %w", err)
		}
		return s.cacheB.Upsert(ctx, &b)
	}
	return nil
}

func (s *watchService) reload(ctx context.Context, collections []string) error {
	all := len(collections) == 0
	var errs []error
	if all || slices.Contains(collections, collContainers) {
		if _, _, err := s.containers.List(ctx, ""); err != nil {
			errs = append(errs, err)
		}
	}
	if all || slices.Contains(collections, collBookings) {
		if _, _, err := s.bookings.List(ctx, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
