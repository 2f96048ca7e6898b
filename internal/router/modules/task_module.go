package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/container"
	handlers "github.com/hemanthdorepalli/Taskmanager-Backend/internal/interface/http"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/interface/middleware"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/helpers"
)

// TaskModule wires task CRUD routes. Everything is behind the auth gate;
// PUT and PATCH share the partial-update handler.
type TaskModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/tasks", m.Handler.List)
		auth.POST("/tasks", m.Handler.Create)
		auth.GET("/tasks/search", m.Handler.Search)
		auth.GET("/tasks/:id", m.Handler.Get)
		auth.PUT("/tasks/:id", m.Handler.Update)
		auth.PATCH("/tasks/:id", m.Handler.Update)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
