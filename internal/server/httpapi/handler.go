package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/HakanVardarr/file-server/internal/common"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	APIKey   string `json:"api_key"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, key, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			http.Error(w, fmt.Sprintf("This username exists: %s", req.Username), http.StatusConflict)
		case errors.Is(err, common.ErrEmailTaken):
			http.Error(w, fmt.Sprintf("This email exists: %s", req.Email), http.StatusConflict)
		default:
			s.logger.Error(r.Context(), "registration failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Username: user.Username,
		Email:    user.Email,
		APIKey:   key,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	key, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAuthenticationFailed):
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, common.ErrKeyRotationFailed):
			// the password was correct; the caller should simply retry
			http.Error(w, "unable to rotate api key, please retry", http.StatusInternalServerError)
		default:
			s.logger.Error(r.Context(), "login failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{APIKey: key})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(r.PathValue("path")))
}

func (s *Server) handleUserAgent(w http.ResponseWriter, r *http.Request) {
	userAgent := r.Header.Get("User-Agent")
	if userAgent == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "User-Agent: %s", userAgent)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path, ok := s.filePath(r.PathValue("name"))
	if !ok {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Cannot locate file called: %s\nIn directory: %s", r.PathValue("name"), s.filesDir)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) handlePostFile(w http.ResponseWriter, r *http.Request) {
	path, ok := s.filePath(r.PathValue("name"))
	if !ok {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := os.WriteFile(path, body, 0o660); err != nil {
		s.logger.Error(r.Context(), "file write failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// filePath resolves name inside the files directory, rejecting anything that
// would escape it.
func (s *Server) filePath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) {
		return "", false
	}
	return filepath.Join(s.filesDir, name), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
