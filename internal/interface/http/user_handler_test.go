package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/application"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	repo "github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/repository"
	handlers "github.com/hemanthdorepalli/Taskmanager-Backend/internal/interface/http"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/helpers"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/validation"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]entity.User)}
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repo.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func newUserTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)
	svc := application.NewUserService(newMemUserRepo(), jwt, nil, logger, nil, "taskmanager-test", false, 0)
	h := handlers.NewUserHandler(svc, logger, "", false)

	engine := gin.New()
	api := engine.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/refresh", h.Refresh)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint_CreatesUser(t *testing.T) {
	engine := newUserTestEngine(t)

	rec := postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice", data["username"])
	assert.NotContains(t, data, "password")
}

func TestRegisterEndpoint_DuplicateIsConflict(t *testing.T) {
	engine := newUserTestEngine(t)

	first := postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	dup := postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "differentpw",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	engine := newUserTestEngine(t)

	rec := postJSON(t, engine, "/api/register", map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestLoginEndpoint_Success(t *testing.T) {
	engine := newUserTestEngine(t)

	require.Equal(t, http.StatusCreated, postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	}).Code)

	rec := postJSON(t, engine, "/api/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)

	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(t, names, "access_token")
	assert.Contains(t, names, "refresh_token")
}

func TestLoginEndpoint_FailureIsUniform(t *testing.T) {
	engine := newUserTestEngine(t)

	require.Equal(t, http.StatusCreated, postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	}).Code)

	wrongPw := postJSON(t, engine, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrongwrong",
	})
	unknown := postJSON(t, engine, "/api/login", map[string]string{
		"username": "nosuchuser",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusBadRequest, wrongPw.Code)
	require.Equal(t, http.StatusBadRequest, unknown.Code)

	// Same status and message either way; the response does not reveal
	// whether the username exists.
	assert.Equal(t, decodeEnvelope(t, unknown).Message, decodeEnvelope(t, wrongPw).Message)
}

func TestRefreshEndpoint_RoundTrip(t *testing.T) {
	engine := newUserTestEngine(t)

	require.Equal(t, http.StatusCreated, postJSON(t, engine, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	}).Code)

	login := postJSON(t, engine, "/api/login", map[string]string{
		"username": "alice",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var loginData struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, login).Data, &loginData))

	rec := postJSON(t, engine, "/api/refresh", map[string]string{
		"refresh_token": loginData.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
}
