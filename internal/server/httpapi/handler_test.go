package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HakanVardarr/file-server/internal/common"
	"github.com/HakanVardarr/file-server/internal/logging"
	"github.com/HakanVardarr/file-server/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	registerErr error
	loginErr    error
	key         string
}

func (f *fakeUserService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	return &models.User{ID: "u1", Username: username, Email: email}, f.key, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.key, nil
}

func newTestServer(t *testing.T, users UserService) *Server {
	t.Helper()
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer("127.0.0.1:0", l, users, t.TempDir())
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegister_Created(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{key: "k3y"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/register",
		`{"username":"alice","email":"a@x.com","password":"pw123"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp registerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "a@x.com", resp.Email)
	assert.Equal(t, "k3y", resp.APIKey)
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		contains string
	}{
		{"username conflict", common.ErrUsernameTaken, http.StatusConflict, "This username exists: alice"},
		{"email conflict", common.ErrEmailTaken, http.StatusConflict, "This email exists: a@x.com"},
		{"hashing failure", common.ErrHashingFailed, http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeUserService{registerErr: tt.err})

			rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/register",
				`{"username":"alice","email":"a@x.com","password":"pw123"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRegister_BadBody(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/register", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{key: "fresh-key"})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/login",
		`{"email":"a@x.com","password":"pw123"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fresh-key", resp.APIKey)
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad credentials", common.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"rotation failed", common.ErrKeyRotationFailed, http.StatusInternalServerError},
		{"internal", common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeUserService{loginErr: tt.err})

			rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/login",
				`{"email":"a@x.com","password":"pw"}`)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestLogin_RotationFailureNamesRetry(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{loginErr: common.ErrKeyRotationFailed})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/user/login",
		`{"email":"a@x.com","password":"pw"}`)

	assert.Contains(t, rec.Body.String(), "retry",
		"rotation failures must be distinguishable from bad credentials")
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEcho(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo/some/nested/path", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some/nested/path", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestUserAgent(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})

	req := httptest.NewRequest(http.MethodGet, "/user-agent", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User-Agent: curl/8.0", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/user-agent", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFiles_RoundTrip(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/files/note.txt", strings.NewReader("hello")))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/note.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestFiles_MissingFile(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/ghost.txt", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot locate file called: ghost.txt")
}

func TestFiles_RejectsTraversal(t *testing.T) {
	srv := newTestServer(t, &fakeUserService{})

	// the path value decodes to "../secret"
	req := httptest.NewRequest(http.MethodGet, "/files/..%2Fsecret", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing may be written outside the files dir either
	req = httptest.NewRequest(http.MethodPost, "/files/..%2Fevil", strings.NewReader("x"))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := os.Stat(filepath.Join(srv.filesDir, "..", "evil"))
	assert.True(t, os.IsNotExist(err))
}
