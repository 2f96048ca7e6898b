package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	repo "github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/repository"
)

// ErrTaskNotFound is returned both when a task does not exist and when it
// belongs to a different user. Callers cannot tell the two apart.
var ErrTaskNotFound = errors.New("task not found")

// FieldErrors carries per-field validation messages for a rejected write.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for f, msg := range e {
		parts = append(parts, f+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// TaskService implements task CRUD. Every operation takes the resolved caller
// id as an explicit argument; nothing is read from ambient request state.
type TaskService struct {
	Repo         repo.TaskRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESTasksIndex string
}

func NewTaskService(r repo.TaskRepository, logger *logrus.Logger, es *elasticsearch.Client, esTasksIndex string) *TaskService {
	return &TaskService{Repo: r, Logger: logger, ES: es, ESTasksIndex: esTasksIndex}
}

// CreateTaskInput is the client-settable surface of a task. There is no owner
// field: the owner is always the authenticated caller.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	Deadline    string
}

// UpdateTaskInput applies partial updates; nil fields retain prior values.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	Deadline    *string
}

// List returns the caller's tasks. A user with zero tasks gets an empty
// slice, never an error.
func (s *TaskService) List(ctx context.Context, callerID string) ([]entity.Task, error) {
	return s.Repo.ListByOwner(ctx, callerID)
}

// Create validates the input, stamps the caller as owner and persists the
// task. Missing priority/status fall back to their defaults; unrecognized
// values are rejected, never coerced.
func (s *TaskService) Create(ctx context.Context, callerID string, in CreateTaskInput) (*entity.Task, error) {
	fields := FieldErrors{}

	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "is required"
	}
	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		fields["deadline"] = err.Error()
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityLow
	} else if !entity.ValidPriority(priority) {
		fields["priority"] = "must be one of: low, medium, high"
	}
	status := in.Status
	if status == "" {
		status = entity.StatusYetToStart
	} else if !entity.ValidStatus(status) {
		fields["status"] = "must be one of: yet-to-start, in-progress, completed, hold"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
		Deadline:    deadline,
		UserID:      callerID,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.indexTask(ctx, t)
	return t, nil
}

// Get returns the caller's task or ErrTaskNotFound. The ownership clause
// lives in the repository predicate, so a foreign task surfaces exactly like
// a missing one.
func (s *TaskService) Get(ctx context.Context, callerID, taskID string) (*entity.Task, error) {
	t, err := s.Repo.GetByIDAndOwner(ctx, taskID, callerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update loads through the same ownership-filtered lookup as Get, merges the
// fields present in the input and persists. The owner is never mutable.
func (s *TaskService) Update(ctx context.Context, callerID, taskID string, in UpdateTaskInput) (*entity.Task, error) {
	t, err := s.Get(ctx, callerID, taskID)
	if err != nil {
		return nil, err
	}

	fields := FieldErrors{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			fields["title"] = "must not be empty"
		} else {
			t.Title = *in.Title
		}
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !entity.ValidPriority(*in.Priority) {
			fields["priority"] = "must be one of: low, medium, high"
		} else {
			t.Priority = *in.Priority
		}
	}
	if in.Status != nil {
		if !entity.ValidStatus(*in.Status) {
			fields["status"] = "must be one of: yet-to-start, in-progress, completed, hold"
		} else {
			t.Status = *in.Status
		}
	}
	if in.Deadline != nil {
		deadline, dErr := parseDeadline(*in.Deadline)
		if dErr != nil {
			fields["deadline"] = dErr.Error()
		} else {
			t.Deadline = deadline
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.indexTask(ctx, t)
	return t, nil
}

// Delete removes the caller's task or returns ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, callerID, taskID string) error {
	if err := s.Repo.DeleteByIDAndOwner(ctx, taskID, callerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	s.removeFromIndex(ctx, taskID)
	return nil
}

func parseDeadline(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("is required")
	}
	d, err := time.Parse(entity.DeadlineLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// indexTask mirrors the task into Elasticsearch for search. Index failures
// are logged, never surfaced: the database row is the source of truth.
func (s *TaskService) indexTask(ctx context.Context, t *entity.Task) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
		"deadline":    t.Deadline.Format(entity.DeadlineLayout),
		"user_id":     t.UserID,
		"updated_at":  t.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESTasksIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("task_id", t.ID).Warn("es index response error")
	}
}

func (s *TaskService) removeFromIndex(ctx context.Context, taskID string) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESTasksIndex, DocumentID: taskID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match over title/description, always filtered by the
// caller's id so results never cross the ownership boundary.
func (s *TaskService) Search(ctx context.Context, callerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": callerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESTasksIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
