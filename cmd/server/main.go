package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/api"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/cache"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/config"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository/postgres"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/service"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/storage"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(os.Stderr, cfg.Server.LogLevel, cfg.Server.Mode == "debug")
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := planning.NewEngine(cfg.PlanningConfig())
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid planning configuration")
	}

	repo, closeRepo, err := newSnapshotRepository(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.App.SnapshotSource).Msg("Failed to initialize snapshot source")
	}
	defer closeRepo()

	evaluationCache, err := cache.NewEvaluationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Evaluation cache unavailable, falling back to memory")
		evaluationCache = cache.NewMemoryEvaluationCache()
	}

	// Initialize services
	planningService := service.NewPlanningService(engine, repo, evaluationCache)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{PlanningService: planningService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("source", cfg.App.SnapshotSource).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// newSnapshotRepository picks the snapshot source named in the config. The
// returned func releases whatever the source holds open.
func newSnapshotRepository(cfg *config.Config) (repository.SnapshotRepository, func(), error) {
	noop := func() {}

	switch cfg.App.SnapshotSource {
	case "", "file":
		return repository.NewFileSnapshotRepository(cfg.App.SnapshotFile), noop, nil

	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("connect database: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return postgres.NewSnapshotRepository(db), func() { db.Close() }, nil

	case "storage":
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewObjectSnapshotRepository(client, cfg.App.SnapshotKey), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown snapshot source %q", cfg.App.SnapshotSource)
}
