package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hsi-patrimonio/inventory-api/internal/api"
	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
	"github.com/hsi-patrimonio/inventory-api/internal/service"
	"github.com/hsi-patrimonio/inventory-api/pkg/logger"
)

func main() {
	// Optional .env for local development; real deployments use the environment
	_ = godotenv.Load()

	log := logger.New()
	log.Info().Msg("Starting inventory import API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	redisClient, err := queue.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	importQueue := queue.NewImportQueue(redisClient, &cfg.Redis, &cfg.Import, log)

	repos := repository.New(db)
	services := service.NewServices(repos, importQueue, cfg, log)

	// Background consumer owns the worker lifecycle
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go importQueue.Consume(workerCtx, services.Worker.Process)
	log.Info().Msg("Import job consumer started")

	router := api.NewRouter(services, importQueue, db, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	stopWorker()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
