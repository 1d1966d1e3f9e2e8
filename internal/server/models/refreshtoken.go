package models

import "time"

// RefreshToken is an opaque single-use token bound to a user. Password
// reset tokens share the same shape.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
