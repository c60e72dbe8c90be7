package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "go-roomcast/cmd/api/router/v1"
	"go-roomcast/internal/config"
	authadapter "go-roomcast/internal/infrastructure/auth/adapter"
	cacheadapter "go-roomcast/internal/infrastructure/cache/adapter"
	"go-roomcast/internal/infrastructure/database"
	queueadapter "go-roomcast/internal/infrastructure/queue/adapter"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/chat/application/service"
	"go-roomcast/internal/pkg/chat/application/task"
	storeadapter "go-roomcast/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "go-roomcast/internal/pkg/chat/presentation/http"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer(cfg.RedisURL, cfg.QueueConcurrency, logger)
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}

	store := storeadapter.NewPgStore(pool)
	hub := realtime.NewHub()
	defer hub.Close()

	auth := authadapter.NewJWTAuthenticator(cfg.JWTSecret, store, cfg.StoreTimeout)
	presence := service.NewPresenceCoordinator(hub, store, cache, logger, cfg.StoreTimeout)
	pipeline := service.NewMessagePipeline(hub, store, logger, cfg.StoreTimeout)
	rooms := service.NewRoomService(hub, store, queueClient, logger, cfg.StoreTimeout)

	task.RegisterSeedRoomTask(queueServer, store, logger)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go func() {
		if err := queueServer.Run(workerCtx); err != nil {
			logger.Error("queue server stopped", "error", err)
		}
	}()

	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Hub:            hub,
		Presence:       presence,
		Pipeline:       pipeline,
		Rooms:          rooms,
		Store:          store,
		Cache:          cache,
		Auth:           auth,
		Log:            logger,
		StoreTimeout:   cfg.StoreTimeout,
		OnlineCacheTTL: cfg.OnlineCacheTTL,
		SendBuffer:     cfg.SendBufferSize,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if err := queueServer.Stop(shutdownCtx); err != nil {
		logger.Error("queue server shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
