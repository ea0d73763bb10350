package main

import (
	"github.com/ourpaint/ourpainthub/backend/internal/config"
	"github.com/ourpaint/ourpainthub/backend/internal/handlers"
	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/internal/utils"
	"github.com/ourpaint/ourpainthub/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue      services.TaskQueue
	worker         *services.Worker
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	friendHandler  *handlers.FriendHandler
	projectHandler *handlers.ProjectHandler
	contentHandler *handlers.ContentHandler
	logHandler     *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Operational logging + retention cleanup
	services.InitSystemLogger(db)
	services.StartLogCleanupScheduler(db, cfg.Log.RetentionDays)

	// Entity audit sink (uses Redis if enabled, otherwise in-process)
	taskQueue := services.InitTaskQueue(cfg)
	services.InitEntityAudit(db, taskQueue)
	worker := services.InitWorker(cfg, services.ProcessEntityLogTask)

	authService := services.NewAuthService(db, &cfg.JWT)
	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	userService := services.NewUserService(db)

	return &appServices{
		taskQueue:      taskQueue,
		worker:         worker,
		authHandler:    handlers.NewAuthHandler(authService, userService),
		userHandler:    handlers.NewUserHandler(userService),
		friendHandler:  handlers.NewFriendHandler(services.NewFriendshipService(db)),
		projectHandler: handlers.NewProjectHandler(services.NewProjectService(db)),
		contentHandler: handlers.NewContentHandler(services.NewContentService(db)),
		logHandler:     handlers.NewSystemLogHandler(services.NewSystemLogService(db), services.NewEntityLogService(db)),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	services.StopLogCleanupScheduler()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
