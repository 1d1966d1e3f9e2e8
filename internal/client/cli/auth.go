package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/services"
	"github.com/dmitrijs2005/logitrack/internal/common"
)

// Login asks for credentials and signs in online, falling back to the
// offline verifier when the server is unreachable.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getRequired(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var (
		s    *services.Session
		mode Mode
	)

	s, err = a.auth.OnlineLogin(ctx, email, password)
	switch {
	case err == nil:
		mode = ModeOnline
	case errors.Is(err, client.ErrUnavailable):
		a.printf("Server unavailable, trying offline login...\n")
		s, err = a.auth.OfflineLogin(ctx, email, password)
		if err != nil {
			a.setMode(ModeDisabled)
			return err
		}
		mode = ModeOffline
	default:
		return err
	}

	a.setSession(s)
	a.setMode(mode)
	a.printf("Logged in as %s (%s)\n", s.Email, s.Role)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.auth.Logout(ctx)
	a.setSession(nil)
	a.setMode("")
	if err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	s := a.currentSession()
	if s.Offline {
		a.printf("%s (%s), offline session\n", s.Email, s.Role)
		return nil
	}

	u, err := a.admin.Me(ctx)
	if err != nil {
		return err
	}
	// the role may have changed since login
	if u.Role != s.Role {
		a.setSession(&services.Session{UserID: u.ID, Email: u.Email, Role: u.Role})
	}

	last := "-"
	if u.LastLogin != nil {
		last = formatTime(*u.LastLogin)
	}
	return a.table([]string{"ID", "Email", "Role", "Last login"},
		[][]string{{u.ID, u.Email, u.Role, last}})
}

// SetPassword redeems a reset token.
func (a *App) SetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("setpw")
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, args[0], password); err != nil {
		return err
	}
	a.printf("Password changed, you can login now\n")
	return nil
}
