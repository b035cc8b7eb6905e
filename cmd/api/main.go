package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pravah-api/api/swagger"
	"github.com/noah-isme/pravah-api/internal/handler"
	internalmiddleware "github.com/noah-isme/pravah-api/internal/middleware"
	"github.com/noah-isme/pravah-api/internal/repository"
	"github.com/noah-isme/pravah-api/internal/service"
	"github.com/noah-isme/pravah-api/pkg/cache"
	"github.com/noah-isme/pravah-api/pkg/config"
	"github.com/noah-isme/pravah-api/pkg/database"
	"github.com/noah-isme/pravah-api/pkg/export"
	"github.com/noah-isme/pravah-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pravah-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pravah-api/pkg/middleware/requestid"
	"github.com/noah-isme/pravah-api/pkg/storage"
)

// @title PRAVAH Center Administration API
// @version 1.0.0
// @description Admissions, attendance, diary and monthly reports for PRAVAH education centers
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}

	stores, db, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = db.PingContext
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, student ids fall back to process memory", zap.Error(err))
		redisClient = nil
	}
	var sequence repository.StudentSequence = repository.NewMemoryStudentSequence()
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		sequence = repository.NewRedisStudentSequence(redisClient, logr)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("init upload storage", zap.String("dir", cfg.Uploads.StorageDir), zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	loc := cfg.Location()
	pdf := export.NewPDFExporter()

	authSvc := service.NewAuthService(stores.Volunteers, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(stores.Students, sequence, files, signer, pdf, service.StudentConfig{
		IDPadding:      cfg.Students.IDPadding,
		MaxUploadBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:   cfg.Uploads.AllowedMIMEs,
		APIPrefix:      cfg.APIPrefix,
		Location:       loc,
	}, validate, logr, metrics)
	reportSvc := service.NewReportService(stores.Students, stores.Attendance, validate, logr, metrics)
	historySvc := service.NewHistoryService(stores.Students, stores.Attendance, stores.Diary, logr, metrics)
	exportSvc := service.NewExportService(reportSvc, historySvc, logr, export.NewCSVExporter(), pdf)

	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Centers:    handler.NewCenterHandler(),
		Students:   handler.NewStudentHandler(studentSvc),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(stores.Attendance, stores.Students, loc, validate, logr, metrics)),
		Diary:      handler.NewDiaryHandler(service.NewDiaryService(stores.Diary, loc, validate, logr, metrics)),
		Feedback:   handler.NewFeedbackHandler(service.NewFeedbackService(stores.Feedback, validate, logr)),
		Reports:    handler.NewReportHandler(reportSvc, exportSvc),
		History:    handler.NewHistoryHandler(historySvc, exportSvc),
		Metrics:    metricsHandler,
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.Stores, *sqlx.DB, error) {
	if cfg.Store.Driver != config.StorePostgres {
		logr.Info("using in-memory record store; data is lost on restart")
		return repository.NewMemoryStore().Stores(), nil, nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return repository.Stores{}, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return repository.Stores{}, nil, err
	}
	return repository.NewPostgresStores(db), db, nil
}
