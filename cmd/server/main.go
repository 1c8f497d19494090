package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	auditapp "github.com/sitepulse/backend/internal/application/audit"
	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/application/entitlement"
	identityapp "github.com/sitepulse/backend/internal/application/identity"
	integrationapp "github.com/sitepulse/backend/internal/application/integration"
	projectapp "github.com/sitepulse/backend/internal/application/project"
	"github.com/sitepulse/backend/internal/infrastructure/ai"
	"github.com/sitepulse/backend/internal/infrastructure/auth"
	"github.com/sitepulse/backend/internal/infrastructure/cache"
	"github.com/sitepulse/backend/internal/infrastructure/config"
	"github.com/sitepulse/backend/internal/infrastructure/logger"
	"github.com/sitepulse/backend/internal/infrastructure/pagespeed"
	"github.com/sitepulse/backend/internal/infrastructure/persistence"
	"github.com/sitepulse/backend/internal/infrastructure/scheduler"
	"github.com/sitepulse/backend/internal/infrastructure/secrets"
	"github.com/sitepulse/backend/internal/infrastructure/storage"
	"github.com/sitepulse/backend/internal/infrastructure/telemetry"
	"github.com/sitepulse/backend/internal/interfaces/http/handler"
	"github.com/sitepulse/backend/internal/interfaces/http/middleware"
	"github.com/sitepulse/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SitePulse backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry: tracing, metrics and continuous profiling. All three are
	// no-ops when disabled in config.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel, 200*time.Millisecond)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Secret vault for provider API keys at rest
	vault, err := secrets.New(cfg.Vault.Key, log)
	if err != nil {
		log.Fatal("Failed to initialize secret vault", zap.Error(err))
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	featureAuditRepo := persistence.NewGormFeatureAuditRepository(db.DB)
	quotaRepo := persistence.NewGormQuotaRepository(db.DB, vault)
	usageRepo := persistence.NewGormUsageRepository(db.DB)
	usageLogRepo := persistence.NewGormUsageLogRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	domainRepo := persistence.NewGormDomainRepository(db.DB)
	pageRepo := persistence.NewGormPageRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	issueRepo := persistence.NewGormIssueRepository(db.DB)
	fixRepo := persistence.NewGormFixRepository(db.DB)
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)

	// Feature status cache: Redis when enabled, in-process otherwise
	statusCache := cache.NewStatusCache(cfg.Redis, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Billing primitives
	quotaGuard := billingapp.NewQuotaGuard(quotaRepo, usageRepo, projectRepo, domainRepo, membershipRepo, log)
	usageMeter := billingapp.NewUsageMeter(usageLogRepo, tenantRepo, planRepo, log)

	// External providers
	pagespeedClient := pagespeed.NewClient(cfg.PageSpeed, log)
	scorer := pagespeed.NewScorer(pagespeedClient, cfg.PageSpeed, log)
	geminiClient := ai.NewGeminiClient(cfg.AI, log)
	groqClient := ai.NewGroqClient(cfg.AI, log)

	// Raw report archive: S3 when configured, otherwise a stub that keeps
	// reports in the database only.
	var archiver auditapp.Archiver
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ReportArchive(cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize report archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure report bucket", zap.Error(err))
		}
		archiver = s3Archive
		log.Info("Report archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		archiver = storage.NewStubArchive()
	}

	// Application services
	entitlementService := entitlement.NewService(tenantRepo, planRepo, usageLogRepo, featureAuditRepo, statusCache, log)
	tenantService := identityapp.NewTenantService(tenantRepo, planRepo, quotaRepo, usageRepo, log)
	planService := identityapp.NewPlanService(planRepo, log)
	authService := identityapp.NewAuthService(userRepo, membershipRepo, tenantRepo, quotaGuard, jwtService, log)
	projectService := projectapp.NewService(projectRepo, domainRepo, pageRepo, quotaGuard, log)
	integrationService := integrationapp.NewService(integrationRepo, vault, pagespeedClient, log)

	credentialResolver := auditapp.NewCredentialResolver(integrationRepo, quotaRepo, vault, log)
	auditService := auditapp.NewService(auditRepo, issueRepo, projectRepo, pageRepo, domainRepo,
		scorer, usageMeter, credentialResolver, nil, archiver, log)
	issueService := auditapp.NewIssueService(issueRepo, auditRepo, fixRepo, log)
	fixOrchestrator := auditapp.NewFixOrchestrator(issueRepo, auditRepo, projectRepo, fixRepo,
		usageMeter, credentialResolver, geminiClient, groqClient, cfg.AI, log)

	// Lifecycle counters ride on the meter provider set up above
	if cfg.Telemetry.Enabled {
		auditMetrics, err := telemetry.NewAuditMetrics()
		if err != nil {
			log.Fatal("Failed to initialize audit metrics", zap.Error(err))
		}
		auditService.SetMetrics(auditMetrics)
		fixOrchestrator.SetMetrics(auditMetrics)
	}

	// Asynchronous audit execution
	var dispatcher *scheduler.AuditDispatcher
	if cfg.Scheduler.Enabled {
		dispatcher = scheduler.NewAuditDispatcher(cfg.Scheduler, auditService, log)
		if err := dispatcher.Start(ctx); err != nil {
			log.Fatal("Failed to start audit dispatcher", zap.Error(err))
		}
		auditService.SetDispatcher(dispatcher)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := dispatcher.Stop(stopCtx); err != nil {
				log.Error("Error stopping audit dispatcher", zap.Error(err))
			}
		}()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	planHandler := handler.NewPlanHandler(planService)
	projectHandler := handler.NewProjectHandler(projectService)
	auditHandler := handler.NewAuditHandler(auditService)
	issueHandler := handler.NewIssueHandler(issueService, fixOrchestrator)
	credentialHandler := handler.NewCredentialHandler(integrationService)
	featureHandler := handler.NewFeatureHandler(entitlementService)
	usageHandler := handler.NewUsageHandler(usageMeter, quotaGuard)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Middleware order matters:
	// 1. RequestID - generate/propagate request ID
	// 2. Recovery - catch panics
	// 3. Logger - log requests
	// 4. Tracing - one span per request (when telemetry is on)
	// 5. Security headers
	// 6. CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for all API routes except registration and login
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
		},
		Logger: log,
	}))

	r.Register(authHandler).
		Register(projectHandler).
		Register(auditHandler).
		Register(issueHandler).
		Register(credentialHandler).
		Register(featureHandler).
		Register(usageHandler)

	// Administration surface: tenant provisioning, plan catalog, feature
	// overrides and usage reconciliation sit behind the org admin gate.
	r.UseAdmin(middleware.RequireOrgAdmin())
	r.RegisterAdmin(tenantHandler).
		RegisterAdmin(planHandler).
		RegisterAdmin(router.RegistrarFunc(featureHandler.RegisterAdminRoutes)).
		RegisterAdmin(router.RegistrarFunc(usageHandler.RegisterAdminRoutes))

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
