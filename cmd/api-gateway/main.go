package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/careerday-api/internal/handler"
	"github.com/noah-isme/careerday-api/internal/middleware"
	"github.com/noah-isme/careerday-api/internal/repository"
	"github.com/noah-isme/careerday-api/internal/service"
	"github.com/noah-isme/careerday-api/pkg/cache"
	"github.com/noah-isme/careerday-api/pkg/config"
	"github.com/noah-isme/careerday-api/pkg/database"
	"github.com/noah-isme/careerday-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/careerday-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/careerday-api/pkg/middleware/requestid"
	"github.com/noah-isme/careerday-api/pkg/storage"
)

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, statistics cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, cfg.Statistics.Enabled)

	// One guard for allocation runs and lifecycle writes.
	guard := &sync.Mutex{}

	allocator := service.NewAllocator(cfg.Allocator, logr, service.NewGreedySolver)
	allocationSvc := service.NewAllocationService(studentRepo, companyRepo, interviewRepo, studentRepo, allocator, cacheSvc, cfg.Allocator, logr, metricsSvc, guard)
	interviewSvc := service.NewInterviewService(interviewRepo, cacheSvc, logr, metricsSvc, guard)
	liveQueueSvc := service.NewLiveQueueService(studentRepo, companyRepo, interviewRepo, logr, nil)
	statisticsSvc := service.NewStatisticsService(studentRepo, companyRepo, interviewRepo, cacheSvc, cfg.Statistics.CacheTTL, logr)
	companySvc := service.NewCompanyService(companyRepo, companyRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, studentRepo, logr)
	exportSvc := service.NewExportService(studentRepo, companyRepo, interviewRepo, logr, cfg.Exports.Enabled)

	var archiveSvc *service.ExportArchiveService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignSecret, cfg.Exports.ResultTTL)
		archiveSvc = service.NewExportArchiveService(exportSvc, store, signer, service.ExportArchiveConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.ResultTTL,
			Workers:   cfg.Exports.Workers,
		}, logr)
		archiveSvc.Start(context.Background())
		defer archiveSvc.Stop()

		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if deleted, err := archiveSvc.Cleanup(); err != nil {
					logr.Sugar().Warnw("export cleanup failed", "error", err)
				} else if len(deleted) > 0 {
					logr.Sugar().Infow("expired exports removed", "count", len(deleted))
				}
			}
		}()
	}

	scheduleHandler := handler.NewScheduleHandler(allocationSvc)
	interviewHandler := handler.NewInterviewHandler(interviewSvc)
	liveQueueHandler := handler.NewLiveQueueHandler(liveQueueSvc)
	statisticsHandler := handler.NewStatisticsHandler(statisticsSvc)
	companyHandler := handler.NewCompanyHandler(companySvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	exportHandler := handler.NewExportHandler(exportSvc, archiveSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/schedule/run", scheduleHandler.Run)
		api.GET("/schedule", scheduleHandler.List)

		api.GET("/live-queue", liveQueueHandler.List)

		api.GET("/interviews/:id", interviewHandler.Get)
		api.POST("/interviews/:id/in-progress", interviewHandler.Start)
		api.POST("/interviews/:id/complete", interviewHandler.Complete)
		api.POST("/interviews/:id/cancel", interviewHandler.Cancel)

		api.GET("/companies", companyHandler.List)
		api.GET("/companies/:id", companyHandler.Get)
		api.PUT("/companies/:id/settings", companyHandler.UpdateSettings)
		api.GET("/companies/:id/live-queue", liveQueueHandler.ByCompany)

		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)

		api.GET("/statistics", statisticsHandler.Statistics)
		api.GET("/summary", statisticsHandler.Summary)

		api.GET("/exports/schedule.csv", exportHandler.ScheduleCSV)
		api.GET("/exports/schedule.pdf", exportHandler.SchedulePDF)
		api.GET("/exports/walkins.csv", exportHandler.WalkinCSV)
		api.GET("/exports/companies/:id/schedule.csv", exportHandler.CompanyScheduleCSV)
		api.POST("/exports/archive", exportHandler.Archive)
		api.GET("/exports/archive/:id", exportHandler.ArchiveStatus)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
