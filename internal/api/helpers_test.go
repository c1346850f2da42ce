package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskmaster/internal/api/middleware"
	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/mocks"
	"github.com/phrazzld/taskmaster/internal/service"
	"github.com/phrazzld/taskmaster/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1024

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI wires the real handlers and services over in-memory stores.
type testAPI struct {
	router      http.Handler
	jwt         auth.JWTService
	users       *mocks.MockUserStore
	tasks       *mocks.MockTaskStore
	comments    *mocks.MockCommentStore
	attachments *mocks.MockAttachmentStore
	activities  *mocks.MockActivityStore
	blobs       *mocks.MockBlob
	emitter     *mocks.MockEventEmitter
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	a := &testAPI{
		users:       mocks.NewMockUserStore(),
		tasks:       mocks.NewMockTaskStore(),
		comments:    &mocks.MockCommentStore{},
		attachments: &mocks.MockAttachmentStore{},
		activities:  &mocks.MockActivityStore{},
		blobs:       mocks.NewMockBlob(),
		emitter:     &mocks.MockEventEmitter{},
	}
	tx := &mocks.MockTransactor{}
	log := quietLogger()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "api-test-secret-that-is-long-enough-1234",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	})
	require.NoError(t, err)
	a.jwt = jwtService

	users, err := service.NewUserService(a.users, tx, mocks.PlainPasswordVerifier(), log)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(a.tasks, a.attachments, a.activities, tx, a.emitter, log)
	require.NoError(t, err)
	comments, err := service.NewCommentService(a.tasks, a.comments, a.activities, tx, a.emitter, log)
	require.NoError(t, err)
	attachments, err := service.NewAttachmentService(a.tasks, a.attachments, a.activities, tx, a.blobs, a.emitter, log)
	require.NoError(t, err)
	activity, err := service.NewActivityService(a.activities, log)
	require.NoError(t, err)

	handlers := Handlers{
		Auth:        NewAuthHandler(users, jwtService, log),
		Tasks:       NewTaskHandler(tasks, log),
		Comments:    NewCommentHandler(comments, log),
		Attachments: NewAttachmentHandler(attachments, testMaxUpload, log),
		Activity:    NewActivityHandler(activity, log),
	}

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	handlers.Mount(r, middleware.NewAuthMiddleware(jwtService).Authenticate, nil)
	a.router = r
	return a
}

// do sends a JSON request (body may be nil) and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// signup registers username and returns an access token.
func (a *testAPI) signup(t *testing.T, username string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": "secret123"}
	rr := a.do(t, http.MethodPost, "/api/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/api/auth/login", creds, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp AuthResponse
	decode(t, rr, &resp)
	return resp.AccessToken
}

// createTask creates a task through the API and returns it.
func (a *testAPI) createTask(t *testing.T, token, title string) TaskResponse {
	t.Helper()

	rr := a.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": title}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var task TaskResponse
	decode(t, rr, &task)
	return task
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	decode(t, rr, &body)
	return body.Error
}
