package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hadirku/hadirku-api/api/swagger"
	"github.com/hadirku/hadirku-api/internal/events"
	"github.com/hadirku/hadirku-api/internal/handler"
	"github.com/hadirku/hadirku-api/internal/middleware"
	"github.com/hadirku/hadirku-api/internal/repository"
	"github.com/hadirku/hadirku-api/internal/service"
	"github.com/hadirku/hadirku-api/pkg/cache"
	"github.com/hadirku/hadirku-api/pkg/config"
	"github.com/hadirku/hadirku-api/pkg/database"
	"github.com/hadirku/hadirku-api/pkg/logger"
	corsmiddleware "github.com/hadirku/hadirku-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hadirku/hadirku-api/pkg/middleware/requestid"
)

// @title Hadirku API
// @version 0.1.0
// @description Substitute-teacher assignment and session lifecycle service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	hub := events.NewHub(cfg.Events.BufferSize)
	var publisher events.Publisher = hub
	if cfg.Events.RedisRelay {
		rdb, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer rdb.Close()

		relay := events.NewRelay(hub, rdb, cfg.Events.RedisChannel, logr)
		go relay.Run(ctx)
		publisher = relay
	}

	metricsSvc := service.NewMetricsService()
	instrumented := service.NewInstrumentedPublisher(publisher, metricsSvc)
	validate := validator.New()

	sessionRepo := repository.NewSessionRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	authSvc := service.NewAuthService(cfg.JWT)
	sessionSvc := service.NewSessionService(
		sessionRepo, scheduleRepo, instrumented,
		cfg.Sessions.DefaultLookaheadHours, cfg.Sessions.MaxLookaheadHours,
		validate, logr,
	)
	availabilitySvc := service.NewAvailabilityService(attendanceRepo, sessionRepo, logr)
	assignmentSvc := service.NewAssignmentService(
		sessionRepo, teacherRepo, attendanceRepo,
		instrumented, metricsSvc, validate, logr,
	)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, teacherRepo, instrumented, validate, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc, assignmentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherRepo, availabilitySvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	eventsHandler := handler.NewEventsHandler(hub, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/sessions", sessionHandler.Window)
		api.GET("/teachers", teacherHandler.List)
		api.GET("/teachers/availability", teacherHandler.Availability)
		api.GET("/events", eventsHandler.Stream)

		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.POST("/sessions/expand", sessionHandler.Expand)
			authed.POST("/sessions/:id/substitute", sessionHandler.Assign)
			authed.POST("/sessions/:id/substitute/check-in", sessionHandler.SubstituteCheckIn)
			authed.POST("/attendance/check-in", attendanceHandler.CheckIn)
			authed.POST("/attendance/check-out", attendanceHandler.CheckOut)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
