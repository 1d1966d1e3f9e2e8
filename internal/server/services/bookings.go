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

type BookingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rules       *policy.Rules
	events      Publisher
	now         func() time.Time
}

func NewBookingService(db *sql.DB, m repomanager.RepositoryManager, events Publisher) *BookingService {
	return &BookingService{
		db:          db,
		repomanager: m,
		rules:       policy.DefaultRules(),
		events:      events,
		now:         time.Now,
	}
}

func (s *BookingService) List(ctx context.Context, search string) ([]*models.Booking, error) {
	if _, err := authorize(ctx, s.rules, policy.BookingsList); err != nil {
		return nil, err
	}
	return s.repomanager.Bookings(s.db).List(ctx, strings.TrimSpace(search))
}

func (s *BookingService) Add(ctx context.Context, bookingNumber string, qty int, typ string) (*models.Booking, error) {
	if _, err := authorize(ctx, s.rules, policy.BookingsCreate); err != nil {
		return nil, err
	}

	number, err := required("booking number", bookingNumber)
	if err != nil {
		return nil, err
	}
	number = strings.ToUpper(number)
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", common.ErrorValidation)
	}

	repo := s.repomanager.Bookings(s.db)
	exists, err := repo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("booking %s %w", number, common.ErrorAlreadyExists)
	}

	b, err := repo.Create(ctx, &models.Booking{
		BookingNumber: number,
		Qty:           qty,
		Type:          strings.ToUpper(strings.TrimSpace(typ)),
		CreatedBy:     session.Actor(ctx),
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, feed.Bookings, feed.OpCreated, b.ID, b)
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	if _, err := authorize(ctx, s.rules, policy.BookingsDelete); err != nil {
		return err
	}
	if err := s.repomanager.Bookings(s.db).Delete(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, feed.Bookings, feed.OpDeleted, id, nil)
	return nil
}
