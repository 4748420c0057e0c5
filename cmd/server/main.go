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

	"graphics-server/internal/config"
	"graphics-server/internal/generation"
	"graphics-server/internal/handler"
	"graphics-server/internal/messaging"
	"graphics-server/internal/models"
	"graphics-server/internal/repository"
	"graphics-server/internal/service"
	"graphics-server/internal/storage"
	"graphics-server/migrations"
	"graphics-server/pkg/authutils"
	"graphics-server/pkg/database"
	sharedLogger "graphics-server/pkg/logger"
	"graphics-server/pkg/middleware"
	"graphics-server/pkg/migration"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		OutputPath:  cfg.LogOutput,
		Service:     "graphics-server",
		Environment: cfg.Env,
		Sampling:    cfg.LogSampling,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))
	logConfigSummary(cfg)

	// --- External connections ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := database.Connect(ctx, database.Config{
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		DBName:      cfg.DBName,
		SSLMode:     cfg.DBSSLMode,
		MaxConns:    int32(cfg.DBMaxConns),
		IdleTimeout: cfg.DBIdleTimeout,
		MaxRetries:  50,
		RetryDelay:  3 * time.Second,
	}, logger)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	if cfg.AutoMigrate {
		migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, pgPool)
		if err := migrator.Up(ctx); err != nil {
			zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
		}
	}

	objectStorage, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		zap.L().Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var signer storage.URLSigner = storage.NoSigner{}
	if cfg.SigningConfigured() {
		cf, err := storage.NewCloudFrontSigner(cfg.CFDomain, cfg.CFKeyPairID, cfg.CFPrivateKeyPEM, cfg.SignedURLTTL, logger)
		if err != nil {
			zap.L().Fatal("Failed to initialize CloudFront signer", zap.Error(err))
		}
		signer = cf
		zap.L().Info("CloudFront signing enabled", zap.String("domain", cfg.CFDomain))
	} else {
		zap.L().Info("CloudFront signing not configured, signed URLs disabled")
	}

	var publisher messaging.ImageEventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.Connect(context.Background(), cfg.RabbitMQURL, 10, 5*time.Second, logger)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()
		publisher, err = messaging.NewRabbitMQPublisher(mqConn, cfg.ImageEventsQueue, logger)
		if err != nil {
			zap.L().Fatal("Failed to create image event publisher", zap.Error(err))
		}
		watchConnection(mqConn, logger)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zap.L().Info("Connected to Redis", zap.String("address", cfg.RedisAddr))
	}

	// --- Dependency injection ---
	spaceRepo := repository.NewPgSpaceRepository(pgPool, logger)
	characterRepo := repository.NewPgEntityRepository(pgPool, models.CharacterKind, logger)
	styleRepo := repository.NewPgEntityRepository(pgPool, models.StyleKind, logger)
	sceneRepo := repository.NewPgEntityRepository(pgPool, models.SceneKind, logger)
	imageRepo := repository.NewPgImageRepository(pgPool, logger)
	usageRepo := repository.NewPgUsageEventRepository(pgPool, logger)

	spaceService := service.NewSpaceService(spaceRepo, logger)
	characterService := service.NewEntityService(characterRepo, spaceService, logger)
	styleService := service.NewEntityService(styleRepo, spaceService, logger)
	sceneService := service.NewEntityService(sceneRepo, spaceService, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.GenerationRatePerSec), cfg.GenerationBurst)
	generators := generation.NewProvider(cfg.GoogleAPIKey, func(ctx context.Context, apiKey string) (generation.ImageGenerator, error) {
		return generation.NewGeminiGenerator(ctx, apiKey, limiter)
	}, logger)
	if !generators.Configured() {
		zap.L().Warn("GOOGLE_API_KEY is not set, image generation is disabled")
	}

	imageService := service.NewImageService(service.ImageServiceDeps{
		Spaces:     spaceService,
		Characters: characterRepo,
		Styles:     styleRepo,
		Scenes:     sceneRepo,
		Images:     imageRepo,
		Events:     usageRepo,
		Generators: generators,
		Storage:    objectStorage,
		Signer:     signer,
		Publisher:  publisher,
		ModelName:  cfg.ImageModel,
		ImageSize:  cfg.ImageSize,
	}, logger)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, logger)
	if err != nil {
		zap.L().Fatal("Failed to create JWT verifier", zap.Error(err))
	}

	// --- HTTP server (gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", handler.Health)
	router.HEAD("/health", handler.Health)

	apiHandler := handler.NewHandler(spaceService, imageService, logger, characterService, styleService, sceneService)
	apiHandler.RegisterRoutes(router, middleware.GinAuth(verifier, logger), handler.GenerateRateLimiter(rateLimitStore(cfg, redisClient)))

	// Applied after the routes so the middleware sees them.
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP server forced to shutdown", zap.Error(err))
	}
	zap.L().Info("Server exiting")
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMinio:
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
	case config.StorageBackendS3:
		if cfg.S3Bucket == "" || cfg.AWSRegion == "" {
			zap.L().Warn("AWS_S3_BUCKET or AWS_REGION not set, object storage is disabled")
			return storage.Disabled{}, nil
		}
		return storage.NewS3Storage(ctx, cfg.AWSRegion, cfg.S3Bucket, logger)
	default:
		zap.L().Info("Object storage disabled")
		return storage.Disabled{}, nil
	}
}

// rateLimitStore shares generation quotas across replicas when Redis is configured.
func rateLimitStore(cfg *config.Config, client *redis.Client) ratelimit.Store {
	if client != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        cfg.GenerateRateLimitWindow,
			Limit:       cfg.GenerateRateLimit,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  cfg.GenerateRateLimitWindow,
		Limit: cfg.GenerateRateLimit,
	})
}

func watchConnection(conn *amqp.Connection, logger *zap.Logger) {
	go func() {
		notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
		if err := <-notifyClose; err != nil {
			logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
		} else {
			logger.Info("RabbitMQ connection closed")
		}
	}()
}

func logConfigSummary(cfg *config.Config) {
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("image_model", cfg.ImageModel),
		zap.Bool("generation_configured", cfg.GenerationConfigured()),
		zap.Bool("signing_configured", cfg.SigningConfigured()),
		zap.Bool("redis_rate_limit", cfg.RedisAddr != ""),
		zap.Bool("events_enabled", cfg.RabbitMQURL != ""),
	)
}
