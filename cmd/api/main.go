package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/arsipkita/esurat-api/api/swagger"
	"github.com/arsipkita/esurat-api/internal/handler"
	"github.com/arsipkita/esurat-api/internal/middleware"
	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/internal/repository"
	"github.com/arsipkita/esurat-api/internal/service"
	"github.com/arsipkita/esurat-api/pkg/cache"
	"github.com/arsipkita/esurat-api/pkg/config"
	"github.com/arsipkita/esurat-api/pkg/database"
	"github.com/arsipkita/esurat-api/pkg/logger"
	corsmiddleware "github.com/arsipkita/esurat-api/pkg/middleware/cors"
	reqidmiddleware "github.com/arsipkita/esurat-api/pkg/middleware/requestid"
	"github.com/arsipkita/esurat-api/pkg/storage"
)

// @title e-Surat API
// @version 1.0.0
// @description Correspondence tracking and outgoing letter approval workflow
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	outgoingRepo := repository.NewOutgoingLetterRepository(db)
	incomingRepo := repository.NewIncomingLetterRepository(db)
	letterTypeRepo := repository.NewLetterTypeRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "esurat-api",
	})

	var pdfSvc *service.LetterPDFService
	if cfg.PDF.Enabled {
		store, err := storage.NewLocalStorage(cfg.PDF.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init letter storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.PDF.SignedURLSecret, cfg.PDF.SignedURLTTL)
		pdfSvc = service.NewLetterPDFService(outgoingRepo, letterTypeRepo, userRepo, store, signer, metricsSvc, logr, service.PDFConfig{
			Enabled:     true,
			Letterhead:  cfg.PDF.Letterhead,
			Concurrency: cfg.PDF.WorkerConcurrency,
			MaxRetries:  cfg.PDF.WorkerRetries,
		})
		pdfSvc.Start(ctx)
		defer pdfSvc.Stop()
	}

	workflowOpts := []service.LetterWorkflowOption{
		service.WithWorkflowCache(cacheSvc),
		service.WithWorkflowMetrics(metricsSvc),
	}
	if pdfSvc != nil {
		workflowOpts = append(workflowOpts, service.WithRenderScheduler(pdfSvc))
	}
	workflowSvc := service.NewLetterWorkflowService(
		outgoingRepo, letterTypeRepo, auditRepo, nil, logr,
		service.WorkflowConfig{
			NumberingMaxRetries:   cfg.Letters.NumberingMaxRetries,
			RejectionReasonMaxLen: cfg.Letters.RejectionReasonMaxLen,
		},
		repository.IsUniqueViolation,
		workflowOpts...,
	)

	incomingSvc := service.NewIncomingLetterService(incomingRepo, auditRepo, nil, logr, cacheSvc)
	letterTypeSvc := service.NewLetterTypeService(letterTypeRepo, cacheSvc, logr)
	verificationSvc := service.NewVerificationService(outgoingRepo, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(outgoingRepo, incomingRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	outgoingHandler := newOutgoingHandler(workflowSvc, pdfSvc)
	incomingHandler := handler.NewIncomingLetterHandler(incomingSvc)
	letterTypeHandler := handler.NewLetterTypeHandler(letterTypeSvc)
	verificationHandler := newVerificationHandler(verificationSvc, pdfSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	// Public surface.
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/verify/:qrCode", verificationHandler.Verify)
	r.GET("/letters/:id/pdf", verificationHandler.DownloadPDF)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Authenticated API.
	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/outgoing-letters", outgoingHandler.List)
		authed.POST("/outgoing-letters", outgoingHandler.Create)
		authed.GET("/outgoing-letters/:id", outgoingHandler.Get)
		authed.PUT("/outgoing-letters/:id", outgoingHandler.Update)
		authed.DELETE("/outgoing-letters/:id", outgoingHandler.Delete)
		authed.POST("/outgoing-letters/:id/submissions", outgoingHandler.Submit)
		authed.GET("/outgoing-letters/:id/pdf-url", outgoingHandler.PDFURL)

		approvals := authed.Group("")
		approvals.Use(middleware.RequireRoles(models.RoleSecretary, models.RoleChairman))
		{
			approvals.POST("/outgoing-letters/:id/signatures", outgoingHandler.Sign)
			approvals.POST("/outgoing-letters/:id/rejections", outgoingHandler.Reject)
		}

		authed.GET("/incoming-letters", incomingHandler.List)
		authed.POST("/incoming-letters", incomingHandler.Create)
		authed.GET("/incoming-letters/:id", incomingHandler.Get)
		authed.PUT("/incoming-letters/:id", incomingHandler.Update)
		authed.DELETE("/incoming-letters/:id", incomingHandler.Delete)

		authed.GET("/letter-types", letterTypeHandler.List)

		if cfg.Dashboard.Enabled {
			authed.GET("/dashboard", dashboardHandler.Overview)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newOutgoingHandler(workflow *service.LetterWorkflowService, pdf *service.LetterPDFService) *handler.OutgoingLetterHandler {
	if pdf == nil {
		return handler.NewOutgoingLetterHandler(workflow, nil)
	}
	return handler.NewOutgoingLetterHandler(workflow, pdf)
}

func newVerificationHandler(verification *service.VerificationService, pdf *service.LetterPDFService) *handler.VerificationHandler {
	if pdf == nil {
		return handler.NewVerificationHandler(verification, nil)
	}
	return handler.NewVerificationHandler(verification, pdf)
}
