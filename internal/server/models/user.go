package models

import (
	"time"

	"github.com/dmitrijs2005/logitrack/internal/policy"
)

// Role is the label attached to a user record. Roles and the rules over them
// live in internal/policy so the console can filter its help the same way.
type Role = policy.Role

const (
	RoleAdmin     = policy.RoleAdmin
	RoleLogistics = policy.RoleLogistics
	RoleDriver    = policy.RoleDriver
	RoleOperator  = policy.RoleOperator
	RoleStaff     = policy.RoleStaff
)

var (
	Roles     = policy.Roles
	ParseRole = policy.ParseRole
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
