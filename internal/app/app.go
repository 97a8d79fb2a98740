package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"pulseapi/internal/config"
	"pulseapi/internal/dataset"
	apierrors "pulseapi/internal/errors"
	"pulseapi/internal/exporter"
	"pulseapi/internal/infrastructure"
	custommw "pulseapi/internal/middleware"
	"pulseapi/internal/services"
	transport "pulseapi/internal/transport/http"
	ws "pulseapi/internal/websocket"
)

// Version is set at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = ""
)

// Application is the dependency container for the dashboard API.
type Application struct {
	config    *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders

	store    *dataset.Store
	services *ServiceContainer
	hub      *ws.Hub

	router chi.Router
	server *http.Server
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize observability: %w", err)
	}

	app := &Application{
		config:    cfg,
		logger:    logger,
		providers: providers,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the store, services, and websocket hub together.
func (a *Application) initializeServices() error {
	a.store = dataset.NewStore(a.config.DatasetDir(), a.logger)

	a.hub = ws.NewHub(a.logger)

	dashboard := services.NewDashboardService(a.store, a.logger)
	dashboard.SetRefreshListener(a.hub.BroadcastCacheRefresh)

	a.services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    services.NewHealthService(Version, BuildTime, a.store, a.logger),
	}

	a.logger.Info("services initialized",
		slog.String("data_dir", a.store.DataDir()),
		slog.String("version", Version))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	otelMW, err := custommw.NewOTelMiddleware(a.providers)
	if err != nil {
		a.logger.Warn("request metrics disabled", slog.String("error", err.Error()))
	} else {
		r.Use(otelMW.Handler)
		a.store.SetMetrics(otelMW.Metrics())
	}

	r.Use(custommw.StructuredLogger(a.logger))
	r.Use(custommw.Recoverer(a.logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if a.config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if a.config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.config.Security.RateLimit.RPS,
			a.config.Security.RateLimit.Burst,
			a.logger)
		r.Use(limiter.Handler)
	}
	r.Use(custommw.Timeout(a.config.Server.WriteTimeout, a.logger))

	errorHandler := apierrors.NewErrorHandler(a.logger)
	dashboardHandler := transport.NewDashboardHandler(a.services.Dashboard, a.logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.services.Health, a.logger)
	exportHandler := transport.NewExportHandler(
		a.services.Dashboard, exporter.NewExcelExporter(a.logger), a.logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dashboardHandler.Routes())
		r.Mount("/export", exportHandler.Routes())

		r.Route("/health", func(r chi.Router) {
			r.Get("/", healthHandler.HealthCheck)
			r.Get("/ready", healthHandler.ReadinessCheck)
			r.Get("/live", healthHandler.LivenessCheck)
		})
		r.Get("/version", healthHandler.Version)
	})

	r.Get("/ws", ws.ServeWS(a.hub, a.logger))

	if a.providers.PrometheusHTTP != nil {
		r.Handle("/metrics", a.providers.PrometheusHTTP)
	}

	a.router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:        a.router,
		ReadTimeout:    a.config.Server.ReadTimeout,
		WriteTimeout:   a.config.Server.WriteTimeout,
		IdleTimeout:    a.config.Server.IdleTimeout,
		MaxHeaderBytes: a.config.Server.MaxHeaderBytes,
	}
}

// Router exposes the configured router, mainly for tests.
func (a *Application) Router() chi.Router {
	return a.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (a *Application) Start(ctx context.Context) error {
	a.hub.Start()

	if a.config.Data.WarmOnStart {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := a.store.Warm(warmCtx); err != nil {
			// Missing datasets keep the API up; the affected endpoints
			// report the error per request.
			a.logger.Warn("dataset warm-up incomplete", slog.String("error", err.Error()))
		}
		cancel()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			slog.String("addr", a.server.Addr),
			slog.String("version", Version))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return a.Stop()
	}
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	a.hub.Stop()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}
	if err := a.providers.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("observability shutdown: %w", err)
	}

	infrastructure.CloseLogFile()
	return firstErr
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Start(ctx)
}
