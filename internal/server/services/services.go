// Package services contains server-side business logic. Each service
// re-checks the caller's role against policy.Rules before touching storage,
// so the rules hold even when a service is called outside the gRPC layer.
package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
)

const minPasswordLength = 6

// Publisher receives a change event after every successful mutation.
// *feed.Hub implements it.
type Publisher interface {
	Emit(ctx context.Context, c feed.Collection, op feed.Op, id string, v any)
}

func authorize(ctx context.Context, rules *policy.Rules, action policy.Action) (session.Session, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return session.Session{}, common.ErrorUnauthorized
	}
	if err := rules.Police(s.Role, action); err != nil {
		return s, err
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	return nil
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
	}
	return v, nil
}
