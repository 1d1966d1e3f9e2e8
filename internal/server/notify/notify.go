// Package notify delivers out-of-band messages to users, currently only
// password reset links.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
)

type Notifier interface {
	SendPasswordReset(ctx context.Context, email, link string, expires time.Time) error
}

// LogNotifier writes the reset link to the structured log, for operators
// to pass on when no mail relay is configured.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("module", "notify")}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, link string, expires time.Time) error {
	n.log.Info(ctx, "password reset issued", "email", email, "link", link, "expires", expires)
	return nil
}

// Notifications is the collection used for broker messages that must not
// reach live subscribers.
const Notifications feed.Collection = "notifications"

const OpPasswordReset feed.Op = "password_reset"

type passwordReset struct {
	Email   string    `json:"email"`
	Link    string    `json:"link"`
	Expires time.Time `json:"expires"`
}

// BrokerNotifier publishes reset requests straight to a sink so a mailer
// consuming the topic or queue can deliver them. It bypasses the hub on
// purpose: the link is a credential.
//
// Delivery is best effort. A broker outage is logged and does not fail the
// reset request, since the token is already stored.
type BrokerNotifier struct {
	sink feed.Sink
	log  logging.Logger
}

func NewBrokerNotifier(sink feed.Sink, log logging.Logger) *BrokerNotifier {
	return &BrokerNotifier{sink: sink, log: log.With("module", "notify")}
}

func (n *BrokerNotifier) SendPasswordReset(ctx context.Context, email, link string, expires time.Time) error {
	e, err := feed.NewEvent(ctx, Notifications, OpPasswordReset, email, passwordReset{Email: email, Link: link, Expires: expires})
	if err != nil {
		return err
	}
	if err := n.sink.Publish(ctx, e); err != nil {
		n.log.Warn(ctx, "password reset not published", "email", email, "error", err)
	}
	return nil
}

// Multi sends through every notifier and joins their errors.
type Multi []Notifier

func (m Multi) SendPasswordReset(ctx context.Context, email, link string, expires time.Time) error {
	var errs []error
	for _, n := range m {
		if err := n.SendPasswordReset(ctx, email, link, expires); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
