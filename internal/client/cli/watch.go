package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

// Watch prints live changes until the user presses Enter. The cache is
// updated as events arrive.
func (a *App) Watch(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = a.watch.Run(ctx, args, func(ev *api.Event) {
			a.printf("%s\n", describeEvent(ev))
		})
		if ctx.Err() == nil {
			a.printf("-- stream closed, press Enter --\n")
		}
	}()

	a.printf("Watching %s, press Enter to stop\n", collectionsLabel(args))

	// the reader is only touched here so the REPL never reads concurrently
	_, _ = a.reader.ReadString('\n')
	cancel()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func collectionsLabel(args []string) string {
	if len(args) == 0 {
		return "all collections"
	}
	return fmt.Sprint(args)
}

func describeEvent(ev *api.Event) string {
	switch ev.Op {
	case "synced":
		return "-- synced --"
	case "lagged":
		return "-- missed some changes, listings reloaded --"
	}
	who := ev.Actor
	if who == "" {
		who = "?"
	}
	return fmt.Sprintf("%s %s %s %s by %s", ev.At.Local().Format("15:04:05"), ev.Collection, ev.ID, ev.Op, who)
}
