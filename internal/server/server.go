// Package server implements the /editor-templates HTTP contract on top of a
// db.Store. It backs `folio serve`, the end-to-end tests and the sync client
// tests.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mithrel/folio/internal/db"
)

// UserHeader names the caller. When present it becomes createdBy on new
// templates and gates update and delete of templates owned by someone else.
const UserHeader = "X-User-Id"

// Server serves template endpoints backed by a Store.
type Server struct {
	cfg   *viper.Viper
	store db.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(cfg *viper.Viper, store db.Store, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{cfg: cfg, store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	api := router.PathPrefix("/editor-templates").Subrouter()
	api.Use(s.auth)
	api.HandleFunc("", s.listHandler).Methods("GET")
	api.HandleFunc("", s.createHandler).Methods("POST")
	api.HandleFunc("/search", s.searchHandler).Methods("GET")
	api.HandleFunc("/validate", s.validateHandler).Methods("POST")
	api.HandleFunc("/export", s.exportHandler).Methods("POST")
	api.HandleFunc("/{id}", s.getHandler).Methods("GET")
	api.HandleFunc("/{id}", s.updateHandler).Methods("PUT")
	api.HandleFunc("/{id}", s.deleteHandler).Methods("DELETE")
	api.HandleFunc("/{id}/duplicate", s.duplicateHandler).Methods("POST")
	api.HandleFunc("/{id}/export", s.exportByIDHandler).Methods("POST")

	if dir := s.exportsDir(); dir != "" {
		router.PathPrefix("/exports/").Handler(http.StripPrefix("/exports/", http.FileServer(http.Dir(dir))))
	}
	router.Use(s.logRequests)
	return router
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(got, "Bearer ")) != tok {
			writeError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) exportsDir() string {
	return strings.TrimSpace(s.cfg.GetString("server.exports_dir"))
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: msg, Details: details})
}

// internalError logs err and answers 500 without leaking it.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error", nil)
}
