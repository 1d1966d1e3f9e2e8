// Package session carries the authenticated caller through a request's
// context. The gRPC and websocket layers attach it; services read it.
package session

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/server/models"
)

type ctxKey struct{}

// Session is the caller identity resolved from an access token.
type Session struct {
	UserID string
	Email  string
	Role   models.Role
}

// FromUser builds a Session for u.
func FromUser(u *models.User) Session {
	return Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Actor is the short editor name written to audit columns: the local part
// of the caller's email, or "User" when it is unknown.
func Actor(ctx context.Context) string {
	s, _ := FromContext(ctx)
	local, _, _ := strings.Cut(s.Email, "@")
	if local == "" {
		return "User"
	}
	return local
}
