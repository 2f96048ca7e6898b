package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/application"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/interface/middleware"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/response"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

// createTaskRequest deliberately has no owner field; the owner is always the
// authenticated caller. Field-level validation lives in the service so the
// same rules apply regardless of transport.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Deadline    *string `json:"deadline"`
}

type taskView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
	UserID      string `json:"user_id"`
}

func toTaskView(t *entity.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Deadline:    t.Deadline.Format(entity.DeadlineLayout),
		UserID:      t.UserID,
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// List returns the caller's tasks; zero tasks is an empty 200 array.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.Svc.List(c.Request.Context(), callerID(c))
	if err != nil {
		h.Logger.WithError(err).Error("list tasks failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list tasks", nil)
		return
	}
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, toTaskView(&tasks[i]))
	}
	response.Success(c, http.StatusOK, views, "tasks", nil)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), callerID(c), application.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		var fields application.FieldErrors
		if errors.As(err, &fields) {
			response.Error[any](c, http.StatusBadRequest, "invalid task", map[string]string(fields))
			return
		}
		h.Logger.WithError(err).Error("create task failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create task", nil)
		return
	}
	response.Success(c, http.StatusCreated, toTaskView(t), "task created", nil)
}

func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskView(t), "task", nil)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.Update(c.Request.Context(), callerID(c), c.Param("id"), application.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		var fields application.FieldErrors
		if errors.As(err, &fields) {
			response.Error[any](c, http.StatusBadRequest, "invalid task", map[string]string(fields))
			return
		}
		h.writeTaskError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskView(t), "task updated", nil)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		h.writeTaskError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *TaskHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), callerID(c), q, 10)
	if err != nil {
		h.Logger.WithError(err).Error("task search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// writeTaskError keeps missing and not-owned tasks identical on the wire.
func (h *TaskHandler) writeTaskError(c *gin.Context, err error) {
	if errors.Is(err, application.ErrTaskNotFound) {
		response.Error[any](c, http.StatusNotFound, "task not found", nil)
		return
	}
	h.Logger.WithError(err).Error("task operation failed")
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}
