// Package ws serves the change feed to browser dashboards over websockets,
// next to a plain health check, on the server's HTTP address.
package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	pingInterval    = 30 * time.Second
)

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (session.Session, error)
}

type subscriber interface {
	Subscribe(collections ...feed.Collection) *feed.Subscription
}

type HTTPServer struct {
	address      string
	users        authenticator
	feed         subscriber
	rules        *policy.Rules
	logger       logging.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

func NewHTTPServer(a string, l logging.Logger, users authenticator, f subscriber) *HTTPServer {
	return &HTTPServer{
		address: a,
		users:   users,
		feed:    f,
		rules:   policy.DefaultRules(),
		logger:  l.With("module", "http_server"),
		// dashboards are served from other origins in development
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		pingInterval: pingInterval,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws", s.serveWS)
	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// readableCollections splits a comma separated list such as
// "containers,bookings" and keeps it to what role may watch.
func (s *HTTPServer) readableCollections(role policy.Role, raw string) ([]feed.Collection, error) {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return feed.Readable(s.rules, role, names)
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
