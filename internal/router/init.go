package router

import (
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/application"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/container"
	pginfra "github.com/hemanthdorepalli/Taskmanager-Backend/internal/infrastructure/postgres"
	handlers "github.com/hemanthdorepalli/Taskmanager-Backend/internal/interface/http"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module with the registry. Called
// once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.AppName,
		cfg.MailSendEnabled,
		cfg.SessionTTL,
	)
	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)

	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())
	taskSvc := application.NewTaskService(taskRepo, container.GetLogger(), container.GetES(), cfg.ESTasksIndex)
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewTaskModule(taskHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
