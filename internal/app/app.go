package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"insightdesk/internal/config"
	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/exporter"
	"insightdesk/internal/infrastructure"
	customMiddleware "insightdesk/internal/middleware"
	"insightdesk/internal/payments"
	"insightdesk/internal/render"
	"insightdesk/internal/services"
	"insightdesk/internal/storage"
	"insightdesk/internal/tablesource"
	"insightdesk/internal/transactions"
	handlers "insightdesk/internal/transport/http"
	ws "insightdesk/internal/websocket"
)

const (
	AppName = "insightdesk-api"

	// historyRealm is announced in the Basic-auth challenge.
	historyRealm = "Insight History"

	sessionSweepInterval = 10 * time.Minute
)

var (
	// Version is set at compile time
	Version = "dev"
	// BuildTime is set at compile time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.InsightMetrics
	WebSocketHub  *ws.Hub
	Transactions  transactions.Log
	Sessions      *services.SessionStore
	Services      *ServiceContainer

	errorHandler *apierrors.ErrorHandler
	stopSweeper  context.CancelFunc
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Analysis *services.AnalysisService
	Payments *services.PaymentService
	Storage  *services.StorageService
	History  *services.HistoryService
	Health   *services.HealthService
}

// NewApplication loads configuration and logging, then wires the
// application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(context.Background(), cfg, logger)
}

// NewApplicationWithConfig wires every component from cfg. Optional
// integrations (Stripe, Supabase, Google Sheets, Chrome) are left out when
// their configuration is missing.
func NewApplicationWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateInsightMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	cfg := a.Config

	txlog, err := transactions.Open(ctx, cfg.Database, cfg.Sheets, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open transaction log: %w", err)
	}
	a.Transactions = txlog

	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	a.WebSocketHub = hub

	checks := map[string]services.HealthChecker{}
	if pinger, ok := txlog.(services.HealthChecker); ok {
		checks["transactions"] = pinger
	}

	// A typed nil must not reach the services, they compare against nil.
	var (
		store  storage.ArtifactStore
		signer services.UploadSigner
	)
	storageClient, err := storage.NewClient(cfg.Storage, a.Logger)
	switch {
	case err == nil:
		store, signer = storageClient, storageClient
		checks["storage"] = storageClient
	case errors.Is(err, storage.ErrNotConfigured):
		a.Logger.WarnContext(ctx, "Supabase storage not configured, artifacts stay in memory")
	default:
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	var gateway payments.Gateway
	stripeClient, err := payments.NewStripeClient(cfg.Payments, a.Logger, nil)
	switch {
	case err == nil:
		gateway = stripeClient
	case errors.Is(err, payments.ErrNotConfigured):
		a.Logger.WarnContext(ctx, "Stripe not configured, checkout endpoints answer 503")
	default:
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}

	if !cfg.History.Enabled() {
		a.Logger.WarnContext(ctx, "History credentials not configured, history endpoints answer 503")
	}

	workbook := exporter.NewWorkbookWriter(a.Logger)
	a.Sessions = services.NewSessionStore(cfg.Analysis.SessionTTL)

	analysis := services.NewAnalysisService(services.AnalysisDeps{
		Source:        tablesource.NewReader(a.Logger),
		Transactions:  txlog,
		Store:         store,
		Renderer:      render.NewRenderer(render.NewPrinter(cfg.Renderer, a.Logger)),
		CSV:           exporter.NewCSVWriter("").WithBOM(cfg.Analysis.CSVBOM),
		Workbook:      workbook,
		Sessions:      a.Sessions,
		Hub:           hub,
		Metrics:       a.Metrics,
		Timeout:       cfg.Analysis.Timeout,
		UploadTimeout: cfg.Storage.ClientTimeout(),
	}, a.Logger)

	features := map[string]bool{
		"payments": cfg.Payments.Enabled(),
		"storage":  cfg.Storage.Enabled(),
		"history":  cfg.History.Enabled(),
		"sheets":   cfg.Sheets.Enabled(),
		"pdf":      cfg.Renderer.PDFEnabled,
	}

	a.Services = &ServiceContainer{
		Analysis: analysis,
		Payments: services.NewPaymentService(gateway, txlog, store != nil, hub, a.Metrics, a.Logger),
		Storage:  services.NewStorageService(signer, a.Logger),
		History:  services.NewHistoryService(cfg.History, txlog, workbook, a.Logger),
		Health:   services.NewHealthService(Version, BuildTime, checks, features, hub, a.Sessions, a.Logger),
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	cfg := a.Config

	// Minimal middleware that doesn't wrap the ResponseWriter, safe for /ws
	r.Use(customMiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	wsHandler := ws.NewHandler(a.WebSocketHub, cfg.WebSocket, cfg.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		if cfg.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if cfg.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				cfg.Security.RateLimit.RPS,
				cfg.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

		a.setupRoutes(r)
	})

	a.Router = r
}

// setupRoutes registers every endpoint behind the full middleware chain.
func (a *Application) setupRoutes(r chi.Router) {
	cfg := a.Config
	validator := customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler).WithMaxBodySize(cfg.Server.MaxBodyBytes)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(a.Services.Analysis, cfg.Analysis.MaxUploadBytes, a.Logger, a.errorHandler)
	paymentHandler := handlers.NewPaymentHandler(a.Services.Payments, validator, a.Logger, a.errorHandler)
	storageHandler := handlers.NewStorageHandler(a.Services.Storage, validator, a.Logger, a.errorHandler)
	historyHandler := handlers.NewHistoryHandler(a.Services.History, validator, a.Logger, a.errorHandler)
	clientLogHandler := handlers.NewClientLogHandler(validator, a.Logger, a.errorHandler)

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.With(chimiddleware.Compress(5, "application/json")).Get("/demo", analysisHandler.Demo)
		r.Mount("/analyses", analysisHandler.Routes())

		r.With(customMiddleware.MaxBodyBytes(cfg.Server.MaxBodyBytes)).Post("/client-logs", clientLogHandler.Handle)
	})

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))
		r.Use(apierrors.NewFailedRequestLogger(a.Logger).Handler)
		r.Mount("/payments", paymentHandler.Routes())
		r.Mount("/storage", storageHandler.Routes())
	})

	r.Mount("/history", historyHandler.Routes(
		customMiddleware.BasicAuth(a.Logger, a.Services.History, historyRealm),
		customMiddleware.AuditLog(a.Logger),
	))
}

// getCORSConfig builds the CORS policy from the configured origins.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	corsConfig := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins))

	return corsConfig
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and background workers. A listen failure
// cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	sweepCtx, stopSweeper := context.WithCancel(context.WithoutCancel(ctx))
	a.stopSweeper = stopSweeper
	go a.sweepSessions(sweepCtx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	a.WebSocketHub.Stop()

	if err := a.Transactions.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing transaction log", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}

func (a *Application) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Sessions.Sweep(); n > 0 {
				a.Logger.DebugContext(ctx, "expired analysis sessions removed", slog.Int("count", n))
			}
		}
	}
}

// performStartupHealthCheck logs dependencies that are unreachable at boot.
// Failures are warnings only; readiness reports them afterwards.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.Any("services", status.Services))
		return
	}
	a.Logger.InfoContext(ctx, "Startup health check passed")
}
