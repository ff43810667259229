package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	etlapp "github.com/mobidist/backend/internal/application/etl"
	organizationapp "github.com/mobidist/backend/internal/application/organization"
	policyapp "github.com/mobidist/backend/internal/application/policy"
	settlementapp "github.com/mobidist/backend/internal/application/settlement"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/infrastructure/cache"
	"github.com/mobidist/backend/internal/infrastructure/config"
	"github.com/mobidist/backend/internal/infrastructure/event"
	"github.com/mobidist/backend/internal/infrastructure/logger"
	"github.com/mobidist/backend/internal/infrastructure/persistence"
	"github.com/mobidist/backend/internal/infrastructure/scheduler"
	"github.com/mobidist/backend/internal/infrastructure/telemetry"
	"github.com/mobidist/backend/internal/interfaces/http/handler"
	"github.com/mobidist/backend/internal/interfaces/http/middleware"
	"github.com/mobidist/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting settlement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry (no-op providers when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the company hierarchy cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Repositories
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	trackingRepo := persistence.NewGormGradeTrackingRepository(db.DB)
	bonusRepo := persistence.NewGormGradeBonusRepository(db.DB)
	factRepo := persistence.NewGormCommissionFactRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	policyRepo := persistence.NewGormPolicyRepository(db.DB)
	rebateRepo := persistence.NewGormRebateMatrixRepository(db.DB)
	splitRepo := persistence.NewGormSplitRuleRepository(db.DB)
	orderLookup := persistence.NewGormOrderLookup(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	hierarchyCache := cache.NewCompanyHierarchyCache(redisClient, companyRepo, cfg.Scheduler.HierarchyCacheTTL, log)
	scheduleCache := cache.NewGradeScheduleCache(redisClient, policyRepo, cfg.Scheduler.HierarchyCacheTTL, log)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	bonusService := settlementapp.NewGradeBonusService(bonusRepo, trackingRepo, txManager, eventBus, log)
	trackingService := settlementapp.NewGradeTrackingService(trackingRepo, settlementRepo, scheduleCache, bonusService, txManager, eventBus, log)
	settlementService := settlementapp.NewSettlementService(settlementRepo, hierarchyCache, splitRepo, trackingService, txManager, eventBus, log)
	summaryService := settlementapp.NewSummaryService(factRepo, log)
	etlService := etlapp.NewCommissionFactETLService(settlementRepo, factRepo, trackingRepo, policyRepo, orderLookup, txManager, log)
	etlService.SetChunkSize(cfg.ETL.ChunkSize)
	companyService := organizationapp.NewCompanyService(companyRepo, organization.NewHierarchyService(), hierarchyCache, txManager, log)
	policyService := policyapp.NewPolicyService(scheduleCache, rebateRepo, splitRepo, log)

	// Order subsystem integration: settleable orders become settlements
	orderSettleableHandler := settlementapp.NewOrderSettleableHandler(settlementService, log)
	eventBus.Subscribe(orderSettleableHandler)
	log.Info("Event handlers registered",
		zap.Strings("order_settleable_events", orderSettleableHandler.EventTypes()))

	// Business metrics ride the event bus
	settlementMetrics, err := telemetry.NewSettlementMetrics()
	if err != nil {
		log.Fatal("Failed to initialize settlement metrics", zap.Error(err))
	}
	eventBus.Subscribe(settlementMetrics)

	// Nightly fact sync
	if cfg.Scheduler.Enabled {
		nightly := scheduler.New(etlService, cfg.Scheduler, cfg.ETL.SyncWindowDays, log)
		if err := nightly.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer nightly.Stop()
		log.Info("Nightly sync scheduler started",
			zap.String("schedule", cfg.Scheduler.NightlySchedule),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	settlementHandler := handler.NewSettlementHandler(settlementService, orderLookup)
	gradeHandler := handler.NewGradeHandler(trackingService, bonusService)
	companyHandler := handler.NewCompanyHandler(companyService, summaryService)
	policyHandler := handler.NewPolicyHandler(policyService)
	etlHandler := handler.NewETLHandler(etlService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	settlementRoutes := router.NewDomainGroup("settlements", "/settlements")
	settlementRoutes.POST("", settlementHandler.Create)
	settlementRoutes.GET("", settlementHandler.List)
	settlementRoutes.GET("/:id", settlementHandler.Get)
	settlementRoutes.POST("/:id/approve", settlementHandler.Approve)
	settlementRoutes.POST("/:id/pay", settlementHandler.MarkPaid)
	settlementRoutes.POST("/:id/unpaid", settlementHandler.MarkUnpaid)
	settlementRoutes.POST("/:id/cancel", settlementHandler.Cancel)
	settlementRoutes.PUT("/:id/notes", settlementHandler.SetNotes)

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("/:id/settlements", settlementHandler.ListByOrder)

	trackingRoutes := router.NewDomainGroup("grade-trackings", "/grade-trackings")
	trackingRoutes.POST("", gradeHandler.SetupTracking)
	trackingRoutes.GET("/:id", gradeHandler.GetTracking)
	trackingRoutes.GET("/:id/history", gradeHandler.GetHistory)
	trackingRoutes.GET("/:id/bonuses", gradeHandler.ListBonusesByTracking)
	trackingRoutes.POST("/:id/recount", gradeHandler.Recount)
	trackingRoutes.POST("/:id/deactivate", gradeHandler.DeactivateTracking)

	bonusRoutes := router.NewDomainGroup("grade-bonuses", "/grade-bonuses")
	bonusRoutes.GET("/:id", gradeHandler.GetBonus)
	bonusRoutes.POST("/:id/approve", gradeHandler.ApproveBonus)
	bonusRoutes.POST("/:id/pay", gradeHandler.PayBonus)
	bonusRoutes.POST("/:id/cancel", gradeHandler.CancelBonus)

	companyRoutes := router.NewDomainGroup("companies", "/companies")
	companyRoutes.POST("", companyHandler.Create)
	companyRoutes.GET("", companyHandler.List)
	companyRoutes.GET("/:id", companyHandler.Get)
	companyRoutes.GET("/:id/children", companyHandler.ListChildren)
	companyRoutes.GET("/:id/ancestry", companyHandler.GetAncestry)
	companyRoutes.GET("/:id/grade-trackings", gradeHandler.ListTrackingsByCompany)
	companyRoutes.GET("/:id/grade-bonuses", gradeHandler.ListBonusesByCompany)
	companyRoutes.GET("/:id/settlement-summary", companyHandler.GetSettlementSummary)
	companyRoutes.POST("/:id/reparent", companyHandler.Reparent)
	companyRoutes.POST("/:id/activate", companyHandler.Activate)
	companyRoutes.POST("/:id/deactivate", companyHandler.Deactivate)

	policyRoutes := router.NewDomainGroup("policies", "/policies")
	policyRoutes.POST("", policyHandler.Create)
	policyRoutes.GET("", policyHandler.List)
	policyRoutes.GET("/:id", policyHandler.Get)
	policyRoutes.PUT("/:id/tiers", policyHandler.UpdateTiers)
	policyRoutes.POST("/:id/deactivate", policyHandler.Deactivate)
	policyRoutes.GET("/:id/rebates", policyHandler.ListRebates)
	policyRoutes.PUT("/:id/rebates", policyHandler.SetRebate)

	splitRoutes := router.NewDomainGroup("split-rules", "/split-rules")
	splitRoutes.GET("", policyHandler.GetSplitRules)
	splitRoutes.PUT("", policyHandler.SetSplitRule)

	etlRoutes := router.NewDomainGroup("etl", "/etl")
	etlRoutes.POST("/sync", etlHandler.Sync)

	r.Register(settlementRoutes).
		Register(orderRoutes).
		Register(trackingRoutes).
		Register(bonusRoutes).
		Register(companyRoutes).
		Register(policyRoutes).
		Register(splitRoutes).
		Register(etlRoutes)

	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
