package main

import (
	"context"
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

	_ "github.com/noah-isme/defense-portal-api/api/swagger"
	"github.com/noah-isme/defense-portal-api/internal/handler"
	"github.com/noah-isme/defense-portal-api/internal/middleware"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/cache"
	"github.com/noah-isme/defense-portal-api/pkg/config"
	"github.com/noah-isme/defense-portal-api/pkg/database"
	"github.com/noah-isme/defense-portal-api/pkg/export"
	"github.com/noah-isme/defense-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/defense-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/defense-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/defense-portal-api/pkg/storage"
)

// @title Defense Portal API
// @version 1.0.0
// @description Thesis defense registration, scheduling and revision clearance portal
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := service.SystemClock()
	validate := validator.New()

	// The in-memory store is the authority; Postgres and Redis are optional
	// collaborators and their absence only disables the mirror, the student
	// directory and stats caching.
	store := repository.NewProcessStore()

	var mirror service.MirrorSink = service.NopMirror{}
	var mirrorSvc *service.MirrorService
	var studentRepo *repository.StudentRepository
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, mirror and student directory disabled", zap.Error(err))
	} else {
		defer db.Close() //nolint:errcheck
		studentRepo = repository.NewStudentRepository(db)
		if cfg.Mirror.Enabled {
			mirrorSvc = service.NewMirrorService(repository.NewMirrorRepository(db), cfg.Mirror, logr)
			mirrorSvc.Start(ctx)
			defer mirrorSvc.Stop()
			mirror = mirrorSvc
		}
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	}

	localStorage, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	catalog := service.NewCatalogService(logr)
	var submissions *service.SubmissionService
	if studentRepo != nil {
		submissions = service.NewSubmissionService(store, catalog, studentRepo, mirror, cfg.Academic.ActiveYear, validate, logr, clock)
	} else {
		submissions = service.NewSubmissionService(store, catalog, nil, mirror, cfg.Academic.ActiveYear, validate, logr, clock)
	}
	scheduling := service.NewSchedulingService(store, mirror, cfg.Academic.Rooms, cfg.Academic.ActiveYear, validate, logr, clock)
	revisions := service.NewRevisionService(store, catalog, mirror, cfg.Academic.RevisionDueDays, validate, logr, clock)
	snapshots := service.NewSnapshotService(store, mirror, cacheSvc, logr, clock)
	dashboard := service.NewDashboardService(store, cacheSvc, metrics, cfg.Dashboard.CacheTTL, logr)
	reports := service.NewReportService(store, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	uploads := service.NewUploadService(localStorage, signer, cfg.Uploads, logr, clock)
	auth := service.NewAuthService(cfg.Auth, validate, logr, clock)

	var students *service.StudentService
	if studentRepo != nil {
		students = service.NewStudentService(studentRepo, snapshots, validate, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(auth)
	requirementHandler := handler.NewRequirementHandler(catalog)
	submissionHandler := handler.NewSubmissionHandler(submissions)
	scheduleHandler := handler.NewScheduleHandler(scheduling)
	revisionHandler := handler.NewRevisionHandler(revisions)
	processHandler := handler.NewProcessHandler(snapshots)
	dashboardHandler := handler.NewDashboardHandler(dashboard, revisions)
	reportHandler := handler.NewReportHandler(reports)
	uploadHandler := handler.NewUploadHandler(uploads)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		// Student-facing routes are keyed by NPM and stay open.
		api.POST("/uploads", uploadHandler.Store)
		api.GET("/uploads/:token", uploadHandler.Download)
		api.GET("/requirements", requirementHandler.List)
		api.POST("/submissions", submissionHandler.Register)
		api.GET("/submissions/lookup", submissionHandler.Lookup)
		api.GET("/submissions/:id", submissionHandler.Get)
		api.POST("/submissions/:id/revision", submissionHandler.SubmitRevision)
		api.GET("/schedules/upcoming", scheduleHandler.Upcoming)

		staff := api.Group("")
		staff.Use(middleware.Staff(auth))
		{
			staff.GET("/submissions", submissionHandler.List)
			staff.GET("/schedules", scheduleHandler.List)
			staff.GET("/rooms", scheduleHandler.Rooms)
			staff.GET("/dashboard/stats", dashboardHandler.Stats)
			staff.GET("/dashboard/overdue", dashboardHandler.Overdue)
			staff.GET("/reports/submissions.csv", reportHandler.SubmissionsCSV)
			staff.GET("/reports/schedules.pdf", reportHandler.SchedulesPDF)

			library := staff.Group("")
			library.Use(middleware.RequireRole(models.RoleAdmin, models.RoleLibrary))
			{
				library.GET("/revisions", revisionHandler.Queue)
				library.PUT("/revisions/:id/validations/:reqId", revisionHandler.ValidateFile)
				library.PUT("/revisions/:id/hardcopy", revisionHandler.SetHardcopy)
				library.POST("/revisions/:id/finalize", revisionHandler.Finalize)
				library.GET("/revisions/:id/repair-status", revisionHandler.RepairStatus)
			}

			admin := staff.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.PUT("/requirements", requirementHandler.Upsert)
				admin.DELETE("/requirements/:id", requirementHandler.Remove)
				admin.PUT("/submissions/:id/validations/:reqId", submissionHandler.ValidateFile)
				admin.DELETE("/submissions/:id/validations/:reqId", submissionHandler.ResetValidation)
				admin.POST("/schedules", scheduleHandler.Propose)
				admin.POST("/schedules/:id/complete", scheduleHandler.Complete)
				admin.DELETE("/schedules/:id", scheduleHandler.Reset)
				admin.POST("/rooms", scheduleHandler.AddRoom)
				admin.DELETE("/rooms/:name", scheduleHandler.RemoveRoom)
				admin.POST("/admin/process/reset", processHandler.Reset)
				admin.POST("/admin/process/undo-reset", processHandler.UndoReset)

				if students != nil {
					studentHandler := handler.NewStudentHandler(students)
					admin.GET("/students", studentHandler.List)
					admin.GET("/students/:npm", studentHandler.Get)
					admin.POST("/students/import", studentHandler.Import)
					admin.POST("/students/bulk-delete", studentHandler.BulkDelete)
					admin.POST("/students/undo-delete", studentHandler.UndoDelete)
				}
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
