package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/dbx"
)

type BookingService interface {
	List(ctx context.Context, search string) ([]*api.Booking, Source, error)
	Add(ctx context.Context, bookingNumber string, qty int, typ string) (*api.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	client client.Client
	db     *sql.DB
}

func NewBookingService(c client.Client, db *sql.DB) BookingService {
	return &bookingService{client: c, db: db}
}

func (s *bookingService) List(ctx context.Context, search string) ([]*api.Booking, Source, error) {
	list, err := s.client.ListBookings(ctx, search)
	if errors.Is(err, client.ErrUnavailable) {
		cached, cerr := bookings.NewSQLiteRepository(s.db).List(ctx, search)
		if cerr != nil {
			return nil, SourceCache, fmt.Errorf("cache error: %w", cerr)
		}
		return cached, SourceCache, nil
	}
	if err != nil {
		return nil, SourceServer, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := bookings.NewSQLiteRepository(tx)
		if search == "" {
			if err := repo.Clear(ctx); err != nil {
				return err
			}
		}
		return repo.Upsert(ctx, list...)
	})
	if err != nil {
		return nil, SourceServer, fmt.Errorf("cache error: %w", err)
	}
	return list, SourceServer, nil
}

func (s *bookingService) Add(ctx context.Context, bookingNumber string, qty int, typ string) (*api.Booking, error) {
	b, err := s.client.AddBooking(ctx, bookingNumber, qty, typ)
	if err != nil {
		return nil, err
	}
	if err := bookings.NewSQLiteRepository(s.db).Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("cache error: %w", err)
	}
	return b, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteBooking(ctx, id); err != nil {
		return err
	}
	if err := bookings.NewSQLiteRepository(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}
	return nil
}
