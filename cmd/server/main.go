// Command server runs the property tax ledger HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/proptax/backend/internal/application/ledger"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/infrastructure/cache"
	"github.com/proptax/backend/internal/infrastructure/config"
	"github.com/proptax/backend/internal/infrastructure/logger"
	"github.com/proptax/backend/internal/infrastructure/migration"
	"github.com/proptax/backend/internal/infrastructure/persistence"
	"github.com/proptax/backend/internal/infrastructure/scheduler"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"github.com/proptax/backend/internal/interfaces/http/handler"
	"github.com/proptax/backend/internal/interfaces/http/middleware"
	"github.com/proptax/backend/internal/interfaces/http/router"
	"github.com/proptax/backend/migrations"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting property tax ledger",
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	otel, err := telemetry.Setup(ctx, telemetrySettings(cfg), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = otel.Logger(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otel.Shutdown(shutdownCtx)
	}()
	meter := otel.Meter(cfg.Telemetry.ServiceName)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTraceConfig := telemetry.DefaultDBTracingConfig()
	dbTraceConfig.Enabled = otel.TracingEnabled() && cfg.Telemetry.DBTraceEnabled
	dbTraceConfig.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTraceConfig.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	dbTracing := telemetry.NewDBTracingPlugin(dbTraceConfig, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	feeScheduleRepo := persistence.NewGormFeeScheduleRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	adjustmentRepo := persistence.NewGormAdjustmentRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	deletionLock, err := cache.NewDeletionLockFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to create deletion lock", zap.Error(err))
	}
	defer func() {
		if err := deletionLock.Close(); err != nil {
			log.Error("Error closing deletion lock", zap.Error(err))
		}
	}()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Application services
	auditor := ledger.NewAuditRecorder(auditRepo, cfg.Ledger.AuditEnabled, log).WithMetrics(ledgerMetrics)
	propertyService := ledger.NewPropertyService(
		propertyRepo, property.NewFeeScheduleResolver(feeScheduleRepo), auditor, log,
	).WithMetrics(ledgerMetrics)
	inspector := ledger.NewRelationshipInspector(billRepo, paymentRepo, adjustmentRepo)
	deletionService := ledger.NewDeletionService(propertyRepo, inspector, txScope, deletionLock, auditor, log).
		WithLockTTL(cfg.Ledger.DeletionLockTTL).
		WithMetrics(ledgerMetrics)
	balanceService := ledger.NewBalanceService(propertyRepo, billRepo)
	billingService := ledger.NewBillingService(propertyRepo, billRepo, auditor, log).WithMetrics(ledgerMetrics)
	deliveryService := ledger.NewDeliveryService(billRepo, auditor, log).WithMetrics(ledgerMetrics)
	auditTrailService := ledger.NewAuditTrailService(auditRepo)
	overdueSweeper := ledger.NewOverdueSweeper(billRepo, paymentRepo, log).WithMetrics(ledgerMetrics)

	sweepHour, sweepMinute, err := scheduler.ParseCronSchedule(cfg.Ledger.OverdueSweepSchedule)
	if err != nil {
		log.Fatal("Invalid overdue sweep schedule", zap.Error(err))
	}
	sweepCfg := scheduler.DefaultConfig()
	sweepCfg.Enabled = cfg.Ledger.OverdueSweepEnabled
	sweepCfg.Hour, sweepCfg.Minute = sweepHour, sweepMinute
	sweeps, err := scheduler.NewDailyScheduler(sweepCfg, log, overdueSweeper)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := sweeps.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	var deleteLimiter *middleware.RateLimiter
	if cfg.Ledger.DeleteRateLimit > 0 {
		deleteLimiter = middleware.NewRateLimiter(cfg.Ledger.DeleteRateLimit, cfg.Ledger.DeleteRateWindow)
		defer deleteLimiter.Stop()
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.Actor(cfg.Ledger.ActorHeader),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		httpMetrics,
		middleware.CORSWithConfig(cors),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	checks := map[string]handler.Pinger{"database": handler.PingerFunc(db.Ping)}
	if pinger, ok := deletionLock.(handler.Pinger); ok {
		checks["deletion_lock"] = pinger
	}
	handler.NewHealthHandler(cfg.App.Version, checks).RegisterRoutes(&engine.RouterGroup)

	router.New(engine, router.WithLogger(log)).
		Register(handler.NewPropertyHandler(handler.PropertyServices{
			Properties:    propertyService,
			Inspector:     inspector,
			Deletion:      deletionService,
			Balance:       balanceService,
			Billing:       billingService,
			AuditTrail:    auditTrailService,
			DeleteLimiter: deleteLimiter,
		}), handler.NewBillHandler(deliveryService)).
		Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sweeps.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler did not stop in time", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func telemetrySettings(cfg *config.Config) telemetry.Settings {
	t := cfg.Telemetry
	return telemetry.Settings{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		Insecure:          t.Insecure,
		ServiceName:       t.ServiceName,
		ServiceVersion:    cfg.App.Version,
		SamplingRatio:     t.SamplingRatio,
		MetricsEnabled:    t.MetricsEnabled,
		ExportInterval:    t.MetricsExportInterval,
		LogsEnabled:       t.LogsEnabled,
		LogLevel:          logger.ParseLevel(cfg.Log.Level),
	}
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool.
	return m.Up()
}
