package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/client/client"
	"github.com/dmitrijs2005/logitrack/internal/client/config"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/bookings"
	"github.com/dmitrijs2005/logitrack/internal/client/repositories/containers"
	"github.com/dmitrijs2005/logitrack/internal/client/services"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/policy"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config     *config.Config
	auth       services.AuthService
	containers services.ContainerService
	bookings   services.BookingService
	admin      services.AdminService
	watch      services.WatchService
	rules      *policy.Rules
	logger     logging.Logger

	mu      sync.RWMutex
	mode    Mode
	session *services.Session

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewJSONLogger(os.Stderr, slog.LevelWarn).With("module", "cli")

	db, err := client.InitDatabase(ctx, c.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	apiClient, err := client.NewLogiTrackClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cs := services.NewContainerService(apiClient, db)
	bs := services.NewBookingService(apiClient, db)
	ws := services.NewWatchService(apiClient, cs, bs,
		containers.NewSQLiteRepository(db), bookings.NewSQLiteRepository(db), logger)

	return &App{
		config:     c,
		auth:       services.NewAuthService(apiClient, db),
		containers: cs,
		bookings:   bs,
		admin:      services.NewAdminService(apiClient),
		watch:      ws,
		rules:      policy.DefaultRules(),
		logger:     logger,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}, nil
}

// Run blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	defer a.auth.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	return a.Root(ctx)
}

// printf is safe to call from the status watcher and the watch command.
func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed && mode != "" {
		a.printf("\n[switched to %s mode]\n", mode)
	}
}

func (a *App) currentSession() *services.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

func (a *App) setSession(s *services.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.currentSession() != nil
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode between online and offline. It does nothing while logged out.
// A session opened offline holds no tokens, so it stays offline until the
// user logs in again; the watcher only tells them the server is back.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hinted := false
	for {
		select {
		case <-ticker.C:
			s := a.currentSession()
			if s == nil {
				continue
			}
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pctx)
			cancel()

			switch {
			case err != nil:
				hinted = false
				if a.Mode() == ModeOnline {
					a.logger.Warn(ctx, "server unreachable", "error", err)
					a.setMode(ModeOffline)
				}
			case s.Offline:
				if !hinted {
					a.printf("\n[server reachable, run login to go online]\n")
					hinted = true
				}
			case a.Mode() != ModeOnline:
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
