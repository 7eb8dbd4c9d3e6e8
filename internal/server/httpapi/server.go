// Package httpapi is the HTTP boundary of the credential service: a thin
// adapter that translates requests into service calls and error kinds into
// status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/HakanVardarr/file-server/internal/logging"
	"github.com/HakanVardarr/file-server/internal/server/models"
)

// UserService is the slice of the service layer the HTTP adapter needs.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type Server struct {
	address  string
	logger   logging.Logger
	users    UserService
	filesDir string
}

func NewServer(address string, l logging.Logger, users UserService, filesDir string) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		users:    users,
		filesDir: filesDir,
	}
}

// Handler returns the full route table wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /user/register", s.handleRegister)
	mux.HandleFunc("POST /user/login", s.handleLogin)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /echo/{path...}", s.handleEcho)
	mux.HandleFunc("GET /user-agent", s.handleUserAgent)
	mux.HandleFunc("GET /files/{name}", s.handleGetFile)
	mux.HandleFunc("POST /files/{name}", s.handlePostFile)

	return s.withLogging(mux)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
