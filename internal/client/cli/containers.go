package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/client/services"
)

func (a *App) ListContainers(ctx context.Context, args []string) error {
	list, src, err := a.containers.List(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if src == services.SourceCache {
		a.setMode(ModeOffline)
		a.printf("(offline: showing cached data)\n")
	}

	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			c.ID, c.ContainerNumber, c.Type, c.TareWeight, c.BookingNumber,
			c.Location, c.Status, c.LastUpdatedBy, formatTime(c.UpdatedAt),
		})
	}
	if err := a.table([]string{"ID", "Number", "Type", "Tare", "Booking", "Location", "Status", "Updated by", "Updated"}, rows); err != nil {
		return err
	}
	a.printf("%d container(s)\n", len(list))
	return nil
}

func (a *App) AddContainer(ctx context.Context, _ []string) error {
	var in api.AddContainerRequest
	var err error

	if in.ContainerNumber, err = getRequired(a.reader, "Container number", a.out); err != nil {
		return err
	}
	if in.TareWeight, err = getSimpleText(a.reader, "Tare weight", a.out); err != nil {
		return err
	}
	if in.Type, err = getSimpleText(a.reader, "Type", a.out); err != nil {
		return err
	}
	if in.BookingNumber, err = getSimpleText(a.reader, "Booking number", a.out); err != nil {
		return err
	}
	if in.Location, err = getSimpleText(a.reader, "Location", a.out); err != nil {
		return err
	}

	c, err := a.containers.Add(ctx, &in)
	if err != nil {
		return err
	}
	a.printf("Container %s added (id %s, status %s)\n", c.ContainerNumber, c.ID, c.Status)
	return nil
}

func statusLabels() []string {
	out := make([]string, len(api.ContainerStatuses))
	for i, s := range api.ContainerStatuses {
		out[i] = string(s)
	}
	return out
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("status")
	}
	id := args[0]

	var (
		status string
		err    error
	)
	if len(args) > 1 {
		status, err = matchChoice(strings.Join(args[1:], " "), statusLabels())
	} else {
		status, err = getChoice(a.reader, "New status", statusLabels(), a.out)
	}
	if err != nil {
		return err
	}

	c, err := a.containers.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	a.printf("Container %s is now %s\n", c.ContainerNumber, c.Status)
	return nil
}

func (a *App) DeleteContainer(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delcontainer")
	}
	ok, err := confirm(a.reader, "Delete container "+args[0]+"? This cannot be undone", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCanceled
	}

	if err := a.containers.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted\n")
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	path, rows, err := a.containers.Export(ctx, strings.Join(args, " "), a.config.ExportDir)
	if err != nil {
		return err
	}
	a.printf("Exported %d row(s) to %s\n", rows, path)
	return nil
}
