// Package server wires the LogiTrack server together: database, change
// feed, services, and the gRPC and HTTP endpoints.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/server/config"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/notify"
	"github.com/dmitrijs2005/logitrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/logitrack/internal/server/services"
	"github.com/dmitrijs2005/logitrack/internal/server/ws"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/logitrack/internal/server/grpc"
)

var dialAMQP = func(url, queue string) (feed.Sink, error) {
	return feed.DialAMQP(url, queue)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *feed.Hub
	grpcServer  *gs.GRPCServer
	httpServer  *ws.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	sinks, err := newSinks(c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events broker init error: %w", err)
	}

	hub := feed.NewHub(logger, feed.DefaultSubscriberBuffer, sinks...)
	rm := repomanager.NewPostgresRepositoryManager()

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if len(sinks) > 0 {
		notifier = notify.Multi{notifier, notify.NewBrokerNotifier(sinks[0], logger)}
	}

	us := services.NewUserService(db, rm, c, hub, notifier)
	cs := services.NewContainerService(db, rm, hub, services.NewExportStore(c))
	bs := services.NewBookingService(db, rm, hub)
	ss := services.NewSettingService(db, rm, hub)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		hub:         hub,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
			Users:      us,
			Containers: cs,
			Bookings:   bs,
			Settings:   ss,
			Feed:       hub,
		}),
		httpServer: ws.NewHTTPServer(c.EndpointAddrHTTP, logger, us, hub),
	}, nil
}

// newSinks connects the configured events broker, if any.
func newSinks(c *config.Config) ([]feed.Sink, error) {
	switch c.EventsBroker {
	case "", config.BrokerNone:
		return nil, nil
	case config.BrokerKafka:
		return []feed.Sink{feed.NewKafkaSink(c.KafkaBrokers, c.KafkaTopic)}, nil
	case config.BrokerAMQP:
		sink, err := dialAMQP(c.AMQPURL, c.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return []feed.Sink{sink}, nil
	}
	return nil, fmt.Errorf("unknown events broker %q", c.EventsBroker)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run applies migrations and serves until ctx is cancelled, a signal
// arrives, or one of the endpoints fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return errors.Join(fmt.Errorf("migrations failed: %w", err), app.close())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpcServer.Run(gctx) })
	g.Go(func() error { return app.httpServer.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(err, app.close())
}

func (app *App) close() error {
	var errs []error
	if err := app.hub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("feed close: %w", err))
	}
	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	return errors.Join(errs...)
}
