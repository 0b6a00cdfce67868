package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caredesk/backend/internal/api/handler"
	"caredesk/backend/internal/assignment"
	"caredesk/backend/internal/authz"
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/escalation"
	"caredesk/backend/internal/lifecycle"
	"caredesk/backend/internal/localization"
	"caredesk/backend/internal/metrics"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, log *logrus.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Complaint{},
		&models.TimelineEvent{},
		&models.Attachment{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("Database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file loaded")
	}
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("Starting CareDesk backend...")

	db, rdb := setupDependencies(cfg, log)
	s := storage.NewStorageService(db, rdb, log)
	m := metrics.NewMetrics()

	resolver := assignment.NewResolver(s)
	lc := lifecycle.NewService(s, resolver, m, log)
	sweeper := escalation.NewSweeper(s, lc, resolver, m, log)
	guard := authz.NewGuard()
	localizer := localization.NewLocalizer()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.StartPeriodic(sweepCtx, cfg.SweepInterval())

	r := gin.Default()
	h := handler.NewHandler(s, lc, sweeper, guard, localizer, log, cfg.JWTSecret)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/auth/token", h.IssueToken)

	api := r.Group("/api", h.RequireAuth())
	{
		api.POST("/complaints", h.CreateComplaint)
		api.GET("/complaints", h.ListComplaints)
		api.GET("/complaints/my", h.MyComplaints)
		api.GET("/complaints/stats/summary", h.ComplaintStats)
		api.GET("/complaints/:id", h.GetComplaint)
		api.GET("/complaints/:id/timeline", h.GetTimeline)
		api.PUT("/complaints/:id/status", h.UpdateStatus)
		api.PUT("/complaints/:id/assign", h.AssignComplaint)
		api.DELETE("/complaints/:id", h.DeleteComplaint)

		api.GET("/departments", h.ListDepartments)
		api.POST("/departments", h.CreateDepartment)
		api.PUT("/departments/:id", h.UpdateDepartment)
		api.DELETE("/departments/:id", h.DeleteDepartment)

		api.GET("/users", h.ListStaff)
		api.PATCH("/users/:id/toggle-status", h.ToggleUserActive)
	}

	server := &http.Server{
		Addr:           ":" + cfg.HTTPPort,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()
	log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
