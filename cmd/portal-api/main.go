package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edunexia/portal-api/api/swagger"
	"github.com/edunexia/portal-api/internal/handler"
	"github.com/edunexia/portal-api/internal/middleware"
	"github.com/edunexia/portal-api/internal/repository"
	"github.com/edunexia/portal-api/internal/service"
	"github.com/edunexia/portal-api/pkg/cache"
	"github.com/edunexia/portal-api/pkg/config"
	"github.com/edunexia/portal-api/pkg/database"
	"github.com/edunexia/portal-api/pkg/export"
	"github.com/edunexia/portal-api/pkg/jobs"
	"github.com/edunexia/portal-api/pkg/logger"
	"github.com/edunexia/portal-api/pkg/mailer"
	corsmiddleware "github.com/edunexia/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edunexia/portal-api/pkg/middleware/requestid"
)

// @title EdunexIA Portal API
// @version 1.0.0
// @description Enrollment checkout, payment webhook and student provisioning pipeline
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, conversion locks and caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	simplifiedRepo := repository.NewSimplifiedEnrollmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	contractRepo := repository.NewContractRepository(db)
	statusLogRepo := repository.NewStatusLogRepository(db)
	conversionRepo := repository.NewConversionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	lockRepo := repository.NewConversionLockRepository(redisClient)

	var mail mailer.Mailer
	if cfg.Mail.SendgridAPIKey != "" {
		mail = mailer.NewSendgridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	} else {
		logr.Warn("sendgrid api key not set, credential emails will be logged only")
		mail = mailer.NewConsoleMailer(logr)
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo)
	contractSvc := service.NewContractService(contractRepo, service.ContractConfig{
		DefaultInstallments: cfg.Contracts.DefaultInstallments,
		DurationMonths:      cfg.Contracts.DurationMonths,
		Campus:              cfg.Contracts.Campus,
	}, logr)
	simplifiedSvc := service.NewSimplifiedEnrollmentService(simplifiedRepo, statusLogRepo, courseRepo, validate, logr)
	provisionerSvc := service.NewProvisionerService(userRepo, logr)
	notifierSvc := service.NewNotifierService(mail, cfg.Mail.LoginURL, logr)
	converterSvc := service.NewConverterService(
		simplifiedRepo,
		enrollmentRepo,
		courseRepo,
		provisionerSvc,
		contractSvc,
		conversionRepo,
		notifierSvc,
		lockRepo,
		metricsSvc,
		cfg.Reconciler.LockTTL,
		logr,
	)
	reconcilerSvc := service.NewReconcilerService(simplifiedRepo, converterSvc, cfg.Reconciler.BatchSize, logr)
	webhookSvc := service.NewWebhookService(simplifiedRepo, statusLogRepo, validate, logr)

	handlers := handler.Handlers{
		Auth:                 handler.NewAuthHandler(authSvc),
		User:                 handler.NewUserHandler(userSvc),
		Course:               handler.NewCourseHandler(courseSvc),
		Enrollment:           handler.NewEnrollmentHandler(enrollmentSvc),
		Contract:             handler.NewContractHandler(contractSvc, export.NewContractPDF()),
		SimplifiedEnrollment: handler.NewSimplifiedEnrollmentHandler(simplifiedSvc, converterSvc, reconcilerSvc),
		Webhook:              handler.NewWebhookHandler(webhookSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, middleware.JWT(authSvc))

	var reconciler *jobs.Scheduler
	if cfg.Reconciler.Interval > 0 {
		reconciler = jobs.NewScheduler("enrollment-reconciler", cfg.Reconciler.Interval, func(ctx context.Context) error {
			if _, err := reconcilerSvc.ProcessPending(ctx); err != nil {
				return err
			}
			_, err := reconcilerSvc.RecoverIncomplete(ctx)
			return err
		}, logr)
		reconciler.Start()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	if reconciler != nil {
		reconciler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
