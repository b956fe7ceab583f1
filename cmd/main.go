package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside-app/courtside-server/cache"
	"github.com/courtside-app/courtside-server/config"
	"github.com/courtside-app/courtside-server/db"
	"github.com/courtside-app/courtside-server/events"
	"github.com/courtside-app/courtside-server/handlers"
	"github.com/courtside-app/courtside-server/live"
	"github.com/courtside-app/courtside-server/repositories"
	api "github.com/courtside-app/courtside-server/routes"
	"github.com/courtside-app/courtside-server/services"
	"github.com/courtside-app/courtside-server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Optional collaborators degrade to no-ops when unconfigured so a
	// bare DATABASE_URL + JWT_SECRET_KEY setup still runs.
	var statsCache interface {
		services.StandingsCache
		services.StatsInvalidator
	} = cache.NoopStatsCache{}
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		cancel()
		defer redisClient.Close()
		statsCache = cache.NewRedisStatsCache(redisClient, cfg.StandingsTTL, logger)
		logger.Info("redis cache initialized", slog.String("addr", cfg.RedisAddr))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaEnabled() {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Error("failed to initialize kafka publisher", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error("failed to close kafka publisher", slog.Any("error", err))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("kafka publisher initialized", slog.String("topic", cfg.KafkaTopic))
	}

	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	}

	hub := live.NewHub(logger)
	go hub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	divisionRepo := repositories.NewPostgresDivisionRepository(dbConn)
	locationRepo := repositories.NewPostgresLocationRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	followRepo := repositories.NewPostgresFollowRepository(dbConn)

	retryConfig := services.RetryConfig{
		MaxRetries:   cfg.RetryMaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
		Multiplier:   2,
		MaxDelay:     cfg.RetryMaxDelay,
	}

	authService := services.NewAuthService(userRepo)
	gameService := services.NewGameService(gameRepo, followRepo, statsCache, retryConfig, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo, divisionRepo, locationRepo, gameRepo, statsCache, uploader, logger)
	followService := services.NewFollowService(followRepo, gameRepo, logger)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	gameHandler := handlers.NewGameHandler(gameService, uploader, hub, publisher)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	followHandler := handlers.NewFollowHandler(followService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey,
		authHandler, gameHandler, tournamentHandler, followHandler, webSocketHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
