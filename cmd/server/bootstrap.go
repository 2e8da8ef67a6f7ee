package main

import (
	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/handlers"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/internal/storage"
	"github.com/luneclub/lune/backend/internal/utils"
	"github.com/luneclub/lune/backend/internal/validator"
	"github.com/luneclub/lune/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg         *config.Config
	store       storage.Storage
	uploads     *services.UploadService
	taskQueue   services.TaskQueue
	worker      *services.Worker
	scheduler   *services.Scheduler
	authHandler *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, storage, queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := validator.Register(); err != nil {
		logger.Fatalf("Failed to register validation rules: %v", err)
	}

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	uploads := services.NewUploadService(store, cfg.Upload.MaxUploadBytes())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	purger := services.NewBlobPurger(store)
	taskQueue := services.NewTaskQueue(&cfg.Redis, purger.Process)

	// Start async worker if Redis is enabled
	worker := services.NewWorker(&cfg.Redis)
	if worker != nil {
		worker.SetProcessor(purger.Process)
		if err := worker.Start(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start task worker")
		}
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg, uploads, taskQueue)
	if err := authHandler.CreateAdminIfNotExists(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	scheduler := services.NewScheduler(models.GetDB())
	logService := services.NewSystemLogService(models.GetDB())
	if err := scheduler.Every("0 3 * * *", "system_log_cleanup", services.DailyKey, logService.RunCleanup); err != nil {
		logger.Fatalf("Failed to schedule log cleanup: %v", err)
	}
	if err := scheduler.Every("30 3 * * *", "refresh_token_purge", services.DailyKey, func() error {
		n, err := authHandler.PurgeExpiredRefreshTokens()
		if err == nil && n > 0 {
			logger.Info().Int64("deleted", n).Msg("expired refresh tokens purged")
		}
		return err
	}); err != nil {
		logger.Fatalf("Failed to schedule refresh token purge: %v", err)
	}
	scheduler.Start()

	return &appServices{
		cfg:         cfg,
		store:       store,
		uploads:     uploads,
		taskQueue:   taskQueue,
		worker:      worker,
		scheduler:   scheduler,
		authHandler: authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
