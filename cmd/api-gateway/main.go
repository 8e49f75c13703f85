package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/handler"
	"github.com/sfms-app/sfms-api/internal/repository"
	"github.com/sfms-app/sfms-api/internal/service"
	"github.com/sfms-app/sfms-api/internal/session"
	"github.com/sfms-app/sfms-api/pkg/cache"
	"github.com/sfms-app/sfms-api/pkg/config"
	"github.com/sfms-app/sfms-api/pkg/database"
	"github.com/sfms-app/sfms-api/pkg/export"
	"github.com/sfms-app/sfms-api/pkg/logger"
	"github.com/sfms-app/sfms-api/pkg/validation"
)

// @title Student Feedback Management API
// @version 1.0
// @description Role-based feedback exchange between students and staff.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	metricsSvc := service.NewMetricsService()
	store := session.Instrument(session.NewRedisStore(redisClient, cfg.Session.TTL), metricsSvc)
	validate := validation.New()

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	authSvc := service.NewAuthService(userRepo, store, validate, log)
	userSvc := service.NewUserService(userRepo, assignmentRepo, validate, log)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, validate, log)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, assignmentRepo, replyRepo, validate, log)
	replySvc := service.NewReplyService(replyRepo, feedbackRepo, log)
	dashboardSvc := service.NewDashboardService(userRepo, assignmentRepo, feedbackRepo, log)
	exportSvc := service.NewExportService(feedbackRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Export.MaxRows, log)

	router := handler.NewRouter(
		cfg,
		store,
		metricsSvc,
		handler.NewAuthHandler(authSvc, cfg.Session, log),
		handler.NewAdminHandler(userSvc, assignmentSvc, feedbackSvc, dashboardSvc, exportSvc, log),
		handler.NewStaffHandler(feedbackSvc, replySvc, dashboardSvc, log),
		handler.NewStudentHandler(feedbackSvc, dashboardSvc, log),
		handler.NewHealthHandler(db, redisClient),
		log,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
