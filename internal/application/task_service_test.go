package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/application"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	repo "github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/repository"
)

// memTaskRepo is an in-memory TaskRepository with the same ownership
// semantics as the Postgres implementation: id and owner are matched
// together, so a foreign task behaves exactly like a missing one.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]entity.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]entity.Task)}
}

func (m *memTaskRepo) Create(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Task, 0)
	for _, t := range m.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) GetByIDAndOwner(_ context.Context, id, ownerID string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, repo.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (m *memTaskRepo) Update(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return repo.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTaskRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != ownerID {
		return repo.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func newTestTaskService() (*application.TaskService, *memTaskRepo) {
	r := newMemTaskRepo()
	return application.NewTaskService(r, nil, nil, ""), r
}

func mustCreateTask(t *testing.T, svc *application.TaskService, owner string, in application.CreateTaskInput) *entity.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return task
}

func TestTaskCreate_Defaults(t *testing.T) {
	svc, _ := newTestTaskService()

	task := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "alice", task.UserID)
	assert.Equal(t, entity.PriorityLow, task.Priority)
	assert.Equal(t, entity.StatusYetToStart, task.Status)
	assert.Equal(t, "2025-01-01", task.Deadline.Format(entity.DeadlineLayout))
}

func TestTaskCreate_OwnerIsAlwaysCaller(t *testing.T) {
	svc, _ := newTestTaskService()

	// CreateTaskInput has no owner field at all; the caller id is the only
	// way ownership can be assigned.
	task := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})
	assert.Equal(t, "alice", task.UserID)
}

func TestTaskCreate_ValidationErrors(t *testing.T) {
	svc, _ := newTestTaskService()

	_, err := svc.Create(context.Background(), "alice", application.CreateTaskInput{
		Description: "no title, no deadline",
		Priority:    "urgent",
		Status:      "done",
	})
	require.Error(t, err)

	var fields application.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "deadline")
	assert.Contains(t, fields, "priority")
	assert.Contains(t, fields, "status")
}

func TestTaskCreate_RejectsBadDeadline(t *testing.T) {
	svc, _ := newTestTaskService()

	_, err := svc.Create(context.Background(), "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "tomorrow",
	})
	var fields application.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "deadline")
}

func TestTaskGet_RoundTrip(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:       "Buy milk",
		Description: "2 liters",
		Priority:    entity.PriorityHigh,
		Status:      entity.StatusInProgress,
		Deadline:    "2025-01-01",
	})

	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Priority, got.Priority)
	assert.Equal(t, created.Status, got.Status)
	assert.Equal(t, created.Deadline, got.Deadline)
}

func TestTaskGet_CrossOwnerLooksLikeMissing(t *testing.T) {
	svc, _ := newTestTaskService()

	task := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Secret plans",
		Deadline: "2025-01-01",
	})

	_, crossErr := svc.Get(context.Background(), "bob", task.ID)
	_, missingErr := svc.Get(context.Background(), "bob", uuid.NewString())

	require.ErrorIs(t, crossErr, application.ErrTaskNotFound)
	require.ErrorIs(t, missingErr, application.ErrTaskNotFound)
	assert.Equal(t, missingErr, crossErr)
}

func TestTaskList_EmptyIsSuccess(t *testing.T) {
	svc, _ := newTestTaskService()

	tasks, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskList_OnlyOwnTasks(t *testing.T) {
	svc, _ := newTestTaskService()

	mustCreateTask(t, svc, "alice", application.CreateTaskInput{Title: "a", Deadline: "2025-01-01"})
	mustCreateTask(t, svc, "alice", application.CreateTaskInput{Title: "b", Deadline: "2025-01-01"})
	mustCreateTask(t, svc, "bob", application.CreateTaskInput{Title: "c", Deadline: "2025-01-01"})

	tasks, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, "alice", task.UserID)
	}
}

func TestTaskUpdate_Partial(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:       "Buy milk",
		Description: "2 liters",
		Priority:    entity.PriorityMedium,
		Deadline:    "2025-01-01",
	})

	status := entity.StatusCompleted
	updated, err := svc.Update(context.Background(), "alice", created.ID, application.UpdateTaskInput{
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.Deadline, updated.Deadline)
}

func TestTaskUpdate_RejectsUnknownEnum(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})

	bad := "someday"
	_, err := svc.Update(context.Background(), "alice", created.ID, application.UpdateTaskInput{
		Status: &bad,
	})
	var fields application.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "status")

	// Nothing was persisted.
	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusYetToStart, got.Status)
}

func TestTaskUpdate_CrossOwner(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})

	title := "hijacked"
	_, err := svc.Update(context.Background(), "bob", created.ID, application.UpdateTaskInput{
		Title: &title,
	})
	require.ErrorIs(t, err, application.ErrTaskNotFound)

	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
}

func TestTaskDelete(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})

	require.NoError(t, svc.Delete(context.Background(), "alice", created.ID))

	_, err := svc.Get(context.Background(), "alice", created.ID)
	assert.ErrorIs(t, err, application.ErrTaskNotFound)

	// Deleting again reports not found, same as a task that never existed.
	assert.ErrorIs(t, svc.Delete(context.Background(), "alice", created.ID), application.ErrTaskNotFound)
}

func TestTaskDelete_CrossOwner(t *testing.T) {
	svc, _ := newTestTaskService()

	created := mustCreateTask(t, svc, "alice", application.CreateTaskInput{
		Title:    "Buy milk",
		Deadline: "2025-01-01",
	})

	err := svc.Delete(context.Background(), "bob", created.ID)
	require.ErrorIs(t, err, application.ErrTaskNotFound)

	// Alice still has her task.
	_, err = svc.Get(context.Background(), "alice", created.ID)
	assert.NoError(t, err)
}

func TestFieldErrors_Error(t *testing.T) {
	err := application.FieldErrors{"title": "is required"}
	assert.True(t, errors.As(error(err), &application.FieldErrors{}))
	assert.Contains(t, err.Error(), "title is required")
}

// searchBackend fakes the Elasticsearch HTTP API and records the last search
// request body so its query can be inspected.
type searchBackend struct {
	srv      *httptest.Server
	lastPath string
	lastBody []byte
}

func newSearchBackend(t *testing.T) *searchBackend {
	t.Helper()
	b := &searchBackend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		body, _ := io.ReadAll(r.Body)
		b.lastPath = r.URL.Path
		b.lastBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"t1","_source":{"id":"t1","title":"Buy milk","user_id":"alice"}}]}}`))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *searchBackend) service(t *testing.T) *application.TaskService {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{b.srv.URL}})
	require.NoError(t, err)
	return application.NewTaskService(newMemTaskRepo(), nil, es, "tasks")
}

// searchQuery is the shape of the request body Search sends to ES.
type searchQuery struct {
	Query struct {
		Bool struct {
			Must struct {
				MultiMatch struct {
					Query  string   `json:"query"`
					Fields []string `json:"fields"`
				} `json:"multi_match"`
			} `json:"must"`
			Filter struct {
				Term map[string]string `json:"term"`
			} `json:"filter"`
		} `json:"bool"`
	} `json:"query"`
	Size int `json:"size"`
}

func (b *searchBackend) decodeQuery(t *testing.T) searchQuery {
	t.Helper()
	var q searchQuery
	require.NoError(t, json.Unmarshal(b.lastBody, &q))
	return q
}

func TestTaskSearch_FilterIsAlwaysCaller(t *testing.T) {
	backend := newSearchBackend(t)
	svc := backend.service(t)

	hits, err := svc.Search(context.Background(), "alice", "milk", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Buy milk", hits[0]["title"])

	assert.Contains(t, backend.lastPath, "/tasks/_search")
	q := backend.decodeQuery(t)
	assert.Equal(t, "milk", q.Query.Bool.Must.MultiMatch.Query)
	assert.Equal(t, map[string]string{"user_id": "alice"}, q.Query.Bool.Filter.Term)

	// A different caller gets a different filter; the query text alone never
	// decides visibility.
	_, err = svc.Search(context.Background(), "bob", "milk", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "bob"}, backend.decodeQuery(t).Query.Bool.Filter.Term)
}

func TestTaskSearch_ClampsSize(t *testing.T) {
	backend := newSearchBackend(t)
	svc := backend.service(t)

	_, err := svc.Search(context.Background(), "alice", "milk", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, backend.decodeQuery(t).Size)

	_, err = svc.Search(context.Background(), "alice", "milk", 500)
	require.NoError(t, err)
	assert.Equal(t, 10, backend.decodeQuery(t).Size)
}

func TestTaskSearch_DisabledWithoutES(t *testing.T) {
	svc, _ := newTestTaskService()

	hits, err := svc.Search(context.Background(), "alice", "milk", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
