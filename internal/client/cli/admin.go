package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/policy"
)

func roleLabels() []string {
	out := make([]string, len(policy.Roles))
	for i, r := range policy.Roles {
		out[i] = string(r)
	}
	return out
}

func (a *App) ListUsers(ctx context.Context, _ []string) error {
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		last := "never"
		if u.LastLogin != nil {
			last = formatTime(*u.LastLogin)
		}
		rows = append(rows, []string{u.ID, u.Email, u.Role, formatTime(u.CreatedAt), last})
	}
	return a.table([]string{"ID", "Email", "Role", "Created", "Last login"}, rows)
}

func (a *App) AddUser(ctx context.Context, _ []string) error {
	email, err := getRequired(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	role, err := getChoice(a.reader, "Role", roleLabels(), a.out)
	if err != nil {
		return err
	}

	u, err := a.admin.CreateUser(ctx, email, password, role)
	if err != nil {
		return err
	}
	a.printf("User %s created with role %s\n", u.Email, u.Role)
	return nil
}

func (a *App) ChangeRole(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("role")
	}

	var (
		role string
		err  error
	)
	if len(args) > 1 {
		role, err = matchChoice(args[1], roleLabels())
	} else {
		role, err = getChoice(a.reader, "New role", roleLabels(), a.out)
	}
	if err != nil {
		return err
	}

	u, err := a.admin.ChangeRole(ctx, args[0], role)
	if err != nil {
		return err
	}
	a.printf("%s is now %s\n", u.Email, u.Role)
	return nil
}

func (a *App) SendPasswordReset(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("resetpw")
	}
	if err := a.admin.SendPasswordReset(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Reset link sent to %s\n", args[0])
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("deluser")
	}
	ok, err := confirm(a.reader, "Delete user "+args[0]+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCanceled
	}
	if err := a.admin.DeleteUser(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted\n")
	return nil
}

func settingsList(kind api.SettingKind) func(*App, context.Context, []string) error {
	return func(a *App, ctx context.Context, _ []string) error {
		list, err := a.admin.ListSettings(ctx, string(kind))
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, s := range list {
			rows = append(rows, []string{s.ID, s.Name, formatTime(s.CreatedAt)})
		}
		return a.table([]string{"ID", "Name", "Created"}, rows)
	}
}

func settingsAdd(kind api.SettingKind) func(*App, context.Context, []string) error {
	return func(a *App, ctx context.Context, args []string) error {
		name, err := a.argOrPrompt(args, "Name")
		if err != nil {
			return err
		}
		s, err := a.admin.AddSetting(ctx, string(kind), name)
		if err != nil {
			return err
		}
		a.printf("Added %s (id %s)\n", s.Name, s.ID)
		return nil
	}
}

func settingsDelete(kind api.SettingKind) func(*App, context.Context, []string) error {
	return func(a *App, ctx context.Context, args []string) error {
		if len(args) != 1 {
			return usageError("del" + strings.TrimSuffix(string(kind), "s"))
		}
		if err := a.admin.DeleteSetting(ctx, string(kind), args[0]); err != nil {
			return err
		}
		a.printf("Deleted\n")
		return nil
	}
}
