package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring"
	"github.com/Black-And-White-Club/golf-scoring/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

const serviceName = "golf-scoring"

// App holds the process-wide wiring of the scoring service.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *bun.DB
	Registry      *prometheus.Registry
	PubSub        *gochannel.GoChannel
	Router        *message.Router
	HTTPRouter    chi.Router
	ScoringModule *scoring.Module

	server        *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// NewApp builds every component from cfg. Nothing is started until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.Observability)
	logger.Info("Initializing application", attr.String("environment", cfg.Observability.Environment))

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Postgres.DSN != "" {
		db, err := openDB(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		app.DB = db
	}

	wmLogger := watermill.NewSlogLogger(logger)
	app.PubSub = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}
	app.Router = router

	httpRouter := chi.NewRouter()
	httpRouter.Get("/health", app.health)
	if cfg.Observability.MetricsAddress == "" {
		httpRouter.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	}
	app.HTTPRouter = httpRouter

	module, err := scoring.NewScoringModule(ctx, cfg, scoring.Dependencies{
		DB:         app.DB,
		Router:     router,
		Subscriber: app.PubSub,
		Publisher:  app.PubSub,
		HTTPRouter: httpRouter,
		Registry:   app.Registry,
		Tracer:     otel.Tracer(serviceName),
		Logger:     logger,
	})
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to initialize scoring module: %w", err)
	}
	app.ScoringModule = module

	app.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return app, nil
}

// NewLogger builds the process logger. Development gets text output, every
// other environment gets JSON.
func NewLogger(cfg config.ObservabilityConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(attr.String("service", serviceName))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func openDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Run starts the module, the event router and the HTTP servers, then blocks
// until ctx is cancelled and shuts everything down.
func (app *App) Run(ctx context.Context) error {
	app.wg.Add(1)
	go app.ScoringModule.Run(ctx, &app.wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()
	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.Join(fmt.Errorf("watermill router stopped during startup: %w", err), app.Close(shutdownCtx))
	}

	serverErr := make(chan error, 2)
	app.serve(app.server, serverErr)
	if app.metricsServer != nil {
		app.serve(app.metricsServer, serverErr)
	}
	app.Logger.Info("Application started", attr.String("addr", app.Config.HTTP.Addr))

	var runErr error
	select {
	case <-ctx.Done():
		app.Logger.Info("Shutdown signal received")
	case err := <-serverErr:
		runErr = err
	case err := <-routerErr:
		if err != nil {
			runErr = fmt.Errorf("watermill router stopped: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, app.Close(shutdownCtx))
}

func (app *App) serve(srv *http.Server, errs chan<- error) {
	go func() {
		app.Logger.Info("HTTP server listening", attr.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server %s: %w", srv.Addr, err)
		}
	}()
}

// Close stops the servers, the module, the router and the database in that
// order.
func (app *App) Close(ctx context.Context) error {
	var errs []error

	if err := app.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop metrics server: %w", err))
		}
	}
	if err := app.ScoringModule.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	app.wg.Wait()

	if err := app.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close watermill router: %w", err))
	}
	if err := app.PubSub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close pubsub: %w", err))
	}
	app.closeDB()

	app.Logger.Info("Application shut down")
	return errors.Join(errs...)
}

func (app *App) closeDB() {
	if app.DB == nil {
		return
	}
	if err := app.DB.Close(); err != nil {
		app.Logger.Error("Error closing database connection", attr.Error(err))
	}
}

func (app *App) health(w http.ResponseWriter, r *http.Request) {
	if app.DB != nil {
		if err := app.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if app.ScoringModule != nil && app.ScoringModule.Queue != nil {
		if err := app.ScoringModule.Queue.HealthCheck(r.Context()); err != nil {
			http.Error(w, "posting queue unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
