package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/client/client"
)

func (a *App) getStatus() string {
	var parts []string
	if s := a.currentSession(); s != nil {
		parts = append(parts, s.Email, s.Role)
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Root prompts for a login and then runs the command loop. It returns nil
// on "exit" or end of input.
func (a *App) Root(ctx context.Context) error {
	a.printf("Welcome to LogiTrack console (type 'help' for commands)\n")

	if err := a.Login(ctx, nil); err != nil && !errors.Is(err, io.EOF) {
		a.printf("login failed: %v\n", err)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := getSimpleText(a.reader, fmt.Sprintf("logitrack %s>", a.getStatus()), a.out)
		if errors.Is(err, io.EOF) {
			a.printf("\nBye!\n")
			return nil
		}
		if err != nil {
			return err
		}

		if done := a.dispatch(ctx, line); done {
			a.printf("Bye!\n")
			return nil
		}
	}
}

// dispatch runs one input line and reports whether the user asked to exit.
func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	name, args := strings.ToLower(parts[0]), parts[1:]

	if name == "exit" || name == "quit" {
		return true
	}

	cmd, ok := a.lookup(name)
	if !ok {
		a.printf("Unknown command: %s\n", name)
		return false
	}
	if cmd.needsLogin && !a.isLoggedIn() {
		a.printf("Please login first\n")
		return false
	}

	if err := cmd.run(a, ctx, args); err != nil {
		a.report(err)
	}
	return false
}

func (a *App) report(err error) {
	switch {
	case errors.Is(err, ErrCanceled):
		a.printf("canceled\n")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		a.printf("server unavailable, this command needs a connection\n")
	case errors.Is(err, client.ErrUnauthorized):
		a.printf("session is not valid on the server, please login again\n")
	case errors.Is(err, client.ErrForbidden):
		a.printf("your role is not allowed to do that\n")
	default:
		a.printf("error: %v\n", err)
	}
}
