package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/client/services"
)

func (a *App) ListBookings(ctx context.Context, args []string) error {
	list, src, err := a.bookings.List(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if src == services.SourceCache {
		a.setMode(ModeOffline)
		a.printf("(offline: showing cached data)\n")
	}

	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{
			b.ID, b.BookingNumber, strconv.Itoa(b.Qty), b.Type, b.CreatedBy, formatTime(b.CreatedAt),
		})
	}
	if err := a.table([]string{"ID", "Booking", "Qty", "Type", "Created by", "Created"}, rows); err != nil {
		return err
	}
	a.printf("%d booking(s)\n", len(list))
	return nil
}

func (a *App) AddBooking(ctx context.Context, _ []string) error {
	number, err := getRequired(a.reader, "Booking number", a.out)
	if err != nil {
		return err
	}
	qtyText, err := getRequired(a.reader, "Quantity", a.out)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty <= 0 {
		return fmt.Errorf("quantity must be a positive number")
	}
	typ, err := getSimpleText(a.reader, "Type", a.out)
	if err != nil {
		return err
	}

	b, err := a.bookings.Add(ctx, number, qty, typ)
	if err != nil {
		return err
	}
	a.printf("Booking %s added (id %s)\n", b.BookingNumber, b.ID)
	return nil
}

func (a *App) DeleteBooking(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delbooking")
	}
	ok, err := confirm(a.reader, "Delete booking "+args[0]+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCanceled
	}
	if err := a.bookings.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted\n")
	return nil
}
