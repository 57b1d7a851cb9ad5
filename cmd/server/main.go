package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/agricred/intake/docs"
	appintake "github.com/agricred/intake/internal/application/intake"
	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/infrastructure/config"
	"github.com/agricred/intake/internal/infrastructure/event"
	"github.com/agricred/intake/internal/infrastructure/logger"
	"github.com/agricred/intake/internal/infrastructure/migration"
	"github.com/agricred/intake/internal/infrastructure/persistence"
	"github.com/agricred/intake/internal/infrastructure/storage"
	"github.com/agricred/intake/internal/infrastructure/telemetry"
	"github.com/agricred/intake/internal/interfaces/http/handler"
	"github.com/agricred/intake/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			AgriCred Intake API
//	@version		1.0
//	@description	Multi-step loan intake wizard: sessions, step data, proofs and submissions.

//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting AgriCred intake",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, telCfg.ServiceName, logger.ParseLevel(cfg.Log.Level))

	// Continuous profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              cfg.Profiling.Enabled,
		ServerAddress:        cfg.Profiling.ServerAddress,
		ApplicationName:      cfg.Profiling.ApplicationName,
		BasicAuthUser:        cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:    cfg.Profiling.BasicAuthPassword,
		ProfileTypes:         cfg.Profiling.ProfileTypes,
		MutexProfileFraction: cfg.Profiling.MutexProfileFraction,
		BlockProfileRate:     cfg.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	meter := meterProvider.Meter("github.com/agricred/intake")
	wizardMetrics, err := telemetry.NewWizardMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create wizard metrics", zap.Error(err))
	}

	// Submission archive
	var (
		archive intake.SubmissionArchive
		pinger  handler.Pinger
		db      *persistence.Database
	)
	if cfg.Archive.Enabled {
		migrator, err := migration.Open(&cfg.Archive, log)
		if err != nil {
			log.Fatal("Failed to open migrations", zap.Error(err))
		}
		if err := migrator.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		if err := migrator.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}

		db, err = persistence.NewDatabase(&cfg.Archive, log, persistence.WithTracing(tracerProvider.IsEnabled()))
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		archive = persistence.NewGormSubmissionArchive(db.DB)
		pinger = db
		log.Info("Submission archive ready", zap.String("driver", cfg.Archive.Driver))
	} else {
		log.Warn("Submission archive disabled; submissions are not persisted")
	}

	// Proof documents
	var documents intake.DocumentStore
	if cfg.Storage.Enabled {
		store, err := storage.NewS3DocumentStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare document bucket", zap.Error(err))
		}
		documents = store
		log.Info("Document storage ready", zap.String("bucket", store.Bucket()))
	} else {
		documents = storage.NewMemoryDocumentStore(cfg.Storage.KeyPrefix)
		log.Warn("Document storage disabled; proofs are kept in memory")
	}

	// Sessions
	sessions := persistence.NewInMemorySessionRepository(cfg.Wizard.SweepInterval,
		persistence.WithSessionTTL(cfg.Wizard.SessionTTL),
		persistence.WithMaxSessions(cfg.Wizard.MaxSessions),
		persistence.WithEvictionHook(func(n int) {
			wizardMetrics.SessionsDropped(context.Background(), n)
			log.Info("Expired intake sessions dropped", zap.Int("count", n))
		}),
	)

	// Domain events
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewSubmissionLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	service := appintake.NewIntakeService(sessions, archive, documents,
		appintake.WithEventPublisher(bus),
		appintake.WithMetrics(wizardMetrics),
		appintake.WithLogger(log),
		appintake.WithRecordIDs(cfg.Wizard.RecordIDs),
		appintake.WithMaxUploadSize(cfg.Storage.MaxUploadSize),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		ServiceName:    telCfg.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		Profiling:      profiler.IsEnabled(),
		Swagger:        !cfg.HTTP.DisableSwagger,
		Meter:          meter,
		Logger:         log,
	})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, service, pinger)
	intakeHandler := handler.NewIntakeHandler(service, cfg.Theme, cfg.Wizard.Locale)

	engine.GET("/health", systemHandler.Health)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler.Routes()).
		Register(intakeHandler.Routes())
	r.Setup()

	for _, route := range intakeHandler.Routes().Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", r.BasePath()+route.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if err := sessions.Close(); err != nil {
		log.Warn("Error closing session store", zap.Error(err))
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, loggerProvider)
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(ctx context.Context, log *zap.Logger, providers ...shutdowner) {
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Error shutting down telemetry", zap.Error(err))
		}
	}
}
