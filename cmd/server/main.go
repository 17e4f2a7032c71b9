package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notesapp/notes-api/internal/api"
	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/config"
	"github.com/notesapp/notes-api/internal/database"
	"github.com/notesapp/notes-api/internal/database/repository"
	"github.com/notesapp/notes-api/internal/database/service"
	internalgrpc "github.com/notesapp/notes-api/internal/grpc"
	"github.com/notesapp/notes-api/internal/handler"
	"github.com/notesapp/notes-api/internal/logger"
	"github.com/notesapp/notes-api/internal/middleware"
	"github.com/notesapp/notes-api/internal/validation"
	"github.com/notesapp/notes-api/internal/worker"
)

const (
	healthProbeInterval = 15 * time.Second
	healthProbeTimeout  = 3 * time.Second

	limiterSweepInterval = time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting Notes API...",
		"environment", cfg.AppEnv,
		"database_driver", cfg.DatabaseDriver,
	)

	if err := validation.Register(); err != nil {
		appLogger.Error("❌ Failed to register validators", "error", err)
		return 1
	}

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		return 1
	}

	db := database.GetDatabase()
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	tagRepo := repository.NewTagRepository(db)
	unitOfWork := repository.NewUnitOfWork(db)

	// 5. Initialize Rate Limiter
	var rateLimiter middleware.RateLimiter
	var localLimiter *middleware.LocalRateLimiter
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using in-process rate limiter", "error", err)
		localLimiter = middleware.NewLocalRateLimiter(cfg, appLogger)
		rateLimiter = localLimiter
	} else {
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg, appLogger)
	}
	defer rateLimiter.Close()

	// 6. Initialize Services
	tokenService := auth.NewTokenServiceFromConfig(cfg)
	authService := service.NewAuthService(userRepo, tokenService, appLogger)
	noteService := service.NewNoteService(unitOfWork, noteRepo, service.NewTagReconciler(appLogger), cfg, appLogger)
	tagService := service.NewTagService(tagRepo, appLogger)

	// 7. Initialize Handlers & Router
	r := api.SetupRouter(api.Handlers{
		Auth:           handler.NewAuthHandler(authService, appLogger),
		Notes:          handler.NewNoteHandler(noteService, appLogger),
		Tags:           handler.NewTagHandler(tagService, appLogger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, appLogger),
		RateLimiter:    rateLimiter,
	}, appLogger)

	pool := worker.NewPool(appLogger)

	// 8. Start gRPC Health Server
	healthServer := internalgrpc.NewHealthServer(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, appLogger)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ApiGrpcPort))
	if err != nil {
		appLogger.Error("❌ Failed to listen for gRPC", "error", err)
		return 1
	}

	pool.SubmitServer("grpc", func() error {
		return healthServer.Serve(grpcListener)
	}, func(ctx context.Context) error {
		healthServer.Stop()
		return nil
	})
	pool.Submit(func(ctx context.Context) {
		healthServer.RunProbe(ctx, healthProbeInterval, healthProbeTimeout)
	})
	if localLimiter != nil {
		pool.Submit(func(ctx context.Context) {
			localLimiter.RunSweeper(ctx, limiterSweepInterval)
		})
	}

	// 9. Start HTTP Server
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	pool.SubmitServer("http", func() error {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", httpServer.Addr)
		return httpServer.ListenAndServe()
	}, httpServer.Shutdown)

	// 10. Wait for a signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		appLogger.Info("🛑 [Go] Shutdown signal received", "signal", sig.String())
	case err := <-pool.Errors():
		appLogger.Error("❌ Server failed, shutting down", "error", err)
		exitCode = 1
	}

	if !pool.Shutdown(time.Duration(cfg.ShutdownTimeout) * time.Second) {
		exitCode = 1
	}

	appLogger.Info("👋 [Go] Notes API stopped")
	return exitCode
}
