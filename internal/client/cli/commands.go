package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/api"
	"github.com/dmitrijs2005/logitrack/internal/policy"
)

type command struct {
	name       string
	usage      string
	summary    string
	needsLogin bool
	// action, when set, hides the command in help for roles that may not
	// run it. The server still decides.
	action policy.Action
	run    func(a *App, ctx context.Context, args []string) error
}

// commands is filled in init because Help reads it.
var (
	commands     []command
	commandIndex map[string]command
)

func init() {
	commands = []command{
		{name: "help", usage: "help", summary: "show available commands", run: (*App).Help},
		{name: "login", usage: "login", summary: "sign in (offline if the server is down)", run: (*App).Login},
		{name: "setpw", usage: "setpw <token>", summary: "set a new password with a reset token", run: (*App).SetPassword},
		{name: "whoami", usage: "whoami", summary: "show the signed-in user", needsLogin: true, run: (*App).WhoAmI},
		{name: "logout", usage: "logout", summary: "sign out and wipe local data", needsLogin: true, run: (*App).Logout},

		{name: "containers", usage: "containers [search]", summary: "list containers", needsLogin: true, action: policy.ContainersList, run: (*App).ListContainers},
		{name: "addcontainer", usage: "addcontainer", summary: "register a container", needsLogin: true, action: policy.ContainersCreate, run: (*App).AddContainer},
		{name: "status", usage: "status <id> [status]", summary: "change a container's status", needsLogin: true, action: policy.ContainersUpdateStatus, run: (*App).SetStatus},
		{name: "delcontainer", usage: "delcontainer <id>", summary: "delete a container", needsLogin: true, action: policy.ContainersDelete, run: (*App).DeleteContainer},
		{name: "export", usage: "export [search]", summary: "download containers as CSV", needsLogin: true, action: policy.ContainersExport, run: (*App).Export},

		{name: "bookings", usage: "bookings [search]", summary: "list bookings", needsLogin: true, action: policy.BookingsList, run: (*App).ListBookings},
		{name: "addbooking", usage: "addbooking", summary: "create a booking", needsLogin: true, action: policy.BookingsCreate, run: (*App).AddBooking},
		{name: "delbooking", usage: "delbooking <id>", summary: "delete a booking", needsLogin: true, action: policy.BookingsDelete, run: (*App).DeleteBooking},

		{name: "users", usage: "users", summary: "list user accounts", needsLogin: true, action: policy.UsersList, run: (*App).ListUsers},
		{name: "adduser", usage: "adduser", summary: "create a user account", needsLogin: true, action: policy.UsersCreate, run: (*App).AddUser},
		{name: "role", usage: "role <user-id> [role]", summary: "change a user's role", needsLogin: true, action: policy.UsersChangeRole, run: (*App).ChangeRole},
		{name: "resetpw", usage: "resetpw <email>", summary: "send a password reset link", needsLogin: true, action: policy.UsersSendReset, run: (*App).SendPasswordReset},
		{name: "deluser", usage: "deluser <user-id>", summary: "delete a user account", needsLogin: true, action: policy.UsersDelete, run: (*App).DeleteUser},

		{name: "locations", usage: "locations", summary: "list locations", needsLogin: true, action: policy.SettingsList, run: settingsList(api.SettingLocations)},
		{name: "addlocation", usage: "addlocation <name>", summary: "add a location", needsLogin: true, action: policy.SettingsCreate, run: settingsAdd(api.SettingLocations)},
		{name: "dellocation", usage: "dellocation <id>", summary: "delete a location", needsLogin: true, action: policy.SettingsDelete, run: settingsDelete(api.SettingLocations)},
		{name: "types", usage: "types", summary: "list container types", needsLogin: true, action: policy.SettingsList, run: settingsList(api.SettingTypes)},
		{name: "addtype", usage: "addtype <name>", summary: "add a container type", needsLogin: true, action: policy.SettingsCreate, run: settingsAdd(api.SettingTypes)},
		{name: "deltype", usage: "deltype <id>", summary: "delete a container type", needsLogin: true, action: policy.SettingsDelete, run: settingsDelete(api.SettingTypes)},

		{name: "watch", usage: "watch [collection...]", summary: "follow live changes until Enter", needsLogin: true, action: policy.FeedWatch, run: (*App).Watch},
	}

	commandIndex = make(map[string]command, len(commands))
	for _, c := range commands {
		commandIndex[c.name] = c
	}
}

func (a *App) lookup(name string) (command, bool) {
	c, ok := commandIndex[name]
	return c, ok
}

// visible reports whether help should list c for the current session.
func (a *App) visible(c command) bool {
	s := a.currentSession()
	if s == nil {
		return !c.needsLogin
	}
	if c.name == "login" || c.name == "setpw" {
		return false
	}
	if c.action == "" {
		return true
	}
	return a.rules.Can(policy.Role(s.Role), c.action)
}

func (a *App) Help(_ context.Context, _ []string) error {
	var rows [][]string
	for _, c := range commands {
		if a.visible(c) {
			rows = append(rows, []string{c.usage, c.summary})
		}
	}
	rows = append(rows, []string{"exit", "leave the console"})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return a.table([]string{"Command", "Description"}, rows)
}

// argOrPrompt returns args joined by spaces, or asks for the value.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getRequired(a.reader, prompt, a.out)
}

func usageError(c string) error {
	return fmt.Errorf("usage: %s", commandIndex[c].usage)
}
