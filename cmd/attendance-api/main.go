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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/geoattend/attendance-api/api/swagger"
	"github.com/geoattend/attendance-api/internal/handler"
	"github.com/geoattend/attendance-api/internal/middleware"
	"github.com/geoattend/attendance-api/internal/repository"
	"github.com/geoattend/attendance-api/internal/router"
	"github.com/geoattend/attendance-api/internal/service"
	"github.com/geoattend/attendance-api/pkg/cache"
	"github.com/geoattend/attendance-api/pkg/config"
	"github.com/geoattend/attendance-api/pkg/database"
	"github.com/geoattend/attendance-api/pkg/logger"
)

// @title Attendance API
// @version 1.0.0
// @description Geofenced lesson attendance for students and school administrators
// @BasePath /api/v1
// @schemes http https
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	if cfg.Reports.CacheEnabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Attendance.Location()

	students := repository.NewStudentRepository(db)
	admins := repository.NewAdminRepository(db)
	groups := repository.NewGroupRepository(db)
	teachers := repository.NewTeacherRepository(db)
	locations := repository.NewLocationRepository(db)
	subjects := repository.NewSubjectRepository(db)
	lessons := repository.NewLessonRepository(db)
	attendance := repository.NewAttendanceRepository(db)

	reportCache := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(students, admins, validate, logr, metrics, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	})
	attendanceSvc := service.NewAttendanceService(attendance, lessons, reportCache, metrics, logr, service.AttendancePolicy{
		RadiusMeters: cfg.Attendance.RadiusMeters,
		Location:     loc,
	})
	reportSvc := service.NewReportService(students, lessons, attendance, reportCache, metrics, logr, cfg.Reports.CacheTTL)
	studentSvc := service.NewStudentService(lessons, attendance, students, logr, loc)
	dashboardSvc := service.NewDashboardService(students, teachers, lessons, attendance, logr, loc)
	rosterSvc := service.NewRosterService(service.RosterRepositories{
		Groups:    groups,
		Students:  students,
		Teachers:  teachers,
		Locations: locations,
		Subjects:  subjects,
	}, reportCache, validate, logr)
	lessonSvc := service.NewLessonService(lessons, reportCache, validate, logr)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["cache"] = handler.PingFunc(cacheRepo.Ping)
	}

	engine := router.New(cfg, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Student:    handler.NewStudentHandler(studentSvc),
		Report:     handler.NewReportHandler(reportSvc),
		Roster:     handler.NewRosterHandler(rosterSvc),
		Lesson:     handler.NewLessonHandler(lessonSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Metrics:    handler.NewMetricsHandler(metrics, checks, logr),
	}, router.Options{
		Verifier: authSvc,
		Metrics:  metrics,
		Limiter:  middleware.NewLoginLimiter(cfg.RateLimit.LoginPerMinute, logr),
		Logger:   logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logr.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server exited")
	return nil
}
