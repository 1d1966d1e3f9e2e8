// Package policy holds the user roles and the role based access rules. The
// server enforces them before any handler runs; the console reads the same
// table to decide which commands to offer.
package policy

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/common"
)

// Role is the label attached to a user record.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLogistics Role = "Logistics"
	RoleDriver    Role = "Driver"
	RoleOperator  Role = "Operator"
	RoleStaff     Role = "Staff"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleLogistics, RoleDriver, RoleOperator, RoleStaff}

// ParseRole accepts a role label, case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", common.ErrorValidation, s)
}

// Action names a guarded operation, e.g. "containers.create".
type Action string

const (
	ContainersList         Action = "containers.list"
	ContainersCreate       Action = "containers.create"
	ContainersUpdateStatus Action = "containers.update_status"
	ContainersDelete       Action = "containers.delete"
	ContainersExport       Action = "containers.export"

	BookingsList   Action = "bookings.list"
	BookingsCreate Action = "bookings.create"
	BookingsDelete Action = "bookings.delete"

	SettingsList   Action = "settings.list"
	SettingsCreate Action = "settings.create"
	SettingsDelete Action = "settings.delete"

	UsersList       Action = "users.list"
	UsersCreate     Action = "users.create"
	UsersChangeRole Action = "users.change_role"
	UsersDelete     Action = "users.delete"
	UsersSendReset  Action = "users.send_reset"

	FeedWatch Action = "feed.watch"

	// Authenticated only needs a valid session.
	Authenticated Action = "session"
)

// Rules maps every action to the set of roles allowed to run it. Actions
// without an entry are denied for everybody.
type Rules struct {
	allow map[Action]map[Role]struct{}
}

func NewRules() *Rules {
	return &Rules{allow: make(map[Action]map[Role]struct{})}
}

// Allow grants action to roles.
func (p *Rules) Allow(action Action, roles ...Role) *Rules {
	set := p.allow[action]
	if set == nil {
		set = make(map[Role]struct{}, len(roles))
		p.allow[action] = set
	}
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return p
}

// Police returns common.ErrorForbidden unless role may run action.
func (p *Rules) Police(role Role, action Action) error {
	if _, ok := p.allow[action][role]; ok {
		return nil
	}
	return fmt.Errorf("%w: role %q is not allowed to %s", common.ErrorForbidden, role, action)
}

// Can is the boolean form of Police.
func (p *Rules) Can(role Role, action Action) bool {
	return p.Police(role, action) == nil
}

// ListAction returns the action that guards reading a change feed
// collection. Watching a collection reveals the same records as listing it.
func ListAction(collection string) (Action, bool) {
	switch collection {
	case "containers":
		return ContainersList, true
	case "bookings":
		return BookingsList, true
	case "users":
		return UsersList, true
	case "locations", "types":
		return SettingsList, true
	}
	return "", false
}

// DefaultRules returns the console's permission table.
func DefaultRules() *Rules {
	all := Roles
	admin := RoleAdmin
	logistics := RoleLogistics

	return NewRules().
		Allow(Authenticated, all...).
		Allow(ContainersList, all...).
		Allow(BookingsList, all...).
		Allow(SettingsList, all...).
		Allow(FeedWatch, all...).
		Allow(ContainersCreate, admin, logistics).
		Allow(ContainersUpdateStatus, admin, logistics, RoleDriver).
		Allow(ContainersExport, admin, logistics).
		Allow(ContainersDelete, admin).
		Allow(BookingsCreate, admin, logistics).
		Allow(BookingsDelete, admin).
		Allow(SettingsCreate, admin).
		Allow(SettingsDelete, admin).
		Allow(UsersList, admin).
		Allow(UsersCreate, admin).
		Allow(UsersChangeRole, admin).
		Allow(UsersDelete, admin).
		Allow(UsersSendReset, admin)
}
