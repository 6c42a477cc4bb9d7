// Package main runs the in-game ad platform HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gap-platform/backend/config"
	"github.com/gap-platform/backend/internal/ads"
	"github.com/gap-platform/backend/internal/auth"
	"github.com/gap-platform/backend/internal/feeding"
	"github.com/gap-platform/backend/internal/impressions"
	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/internal/playlists"
	"github.com/gap-platform/backend/pkg/database"
	"github.com/gap-platform/backend/pkg/ratelimit"
	"github.com/gap-platform/backend/pkg/redis"
	"github.com/gap-platform/backend/pkg/response"
	"github.com/gap-platform/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// The ingestion rate limit lives in Redis so the window is shared across
	// instances; without Redis we fall back to per-instance counting.
	var limiter ratelimit.Limiter
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting is per-instance", zap.Error(err))
		limiter = ratelimit.NewMemoryLimiter(
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.MaxRequests)
	} else {
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb.Client,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.MaxRequests)
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Ads
	adRepo := ads.NewRepository(pool)
	adHandler := ads.NewHandler(adRepo, s3Client, logger)

	// Playlists / schedules / deployments
	playlistRepo := playlists.NewRepository(pool)
	playlistHandler := playlists.NewHandler(playlistRepo, logger)

	// Feeding
	feedingRepo := feeding.NewRepository(pool, cfg.Feeding)
	feedingEngine := feeding.NewEngine(cfg.Feeding)
	feedingHandler := feeding.NewHandler(feedingRepo, feedingEngine, logger)

	// Impressions
	impressionRepo := impressions.NewRepository(pool)
	impressionHandler := impressions.NewHandler(impressionRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/api/v1/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Brand portal (session token required)
	brand := router.Group("/api/v1")
	brand.Use(middleware.BrandSession(jwtService, authRepo))
	{
		brand.GET("/ads", adHandler.List)
		brand.POST("/ads", adHandler.Create)
		brand.GET("/ads/:id", adHandler.Get)
		brand.PUT("/ads/:id", adHandler.Update)
		brand.DELETE("/ads/:id", adHandler.Delete)
		brand.POST("/ads/:id/media-upload-url", adHandler.MediaUploadURL)

		brand.GET("/playlists", playlistHandler.List)
		brand.POST("/playlists", playlistHandler.Create)
		brand.GET("/playlists/:id", playlistHandler.Get)
		brand.PUT("/playlists/:id", playlistHandler.Update)
		brand.DELETE("/playlists/:id", playlistHandler.Delete)
	}

	// Device/game servers (API key required). Only ingestion is rate limited.
	device := router.Group("/api/v1")
	device.Use(middleware.APIKey(authRepo))
	{
		device.POST("/feeding/container-ads", feedingHandler.Feed)
		device.POST("/impressions/batch", middleware.RateLimit(limiter, logger), impressionHandler.Ingest)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
