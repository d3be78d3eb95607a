package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/revise-app/revise/internal/fsrs"
	"github.com/revise-app/revise/internal/store"
)

// Server is the revise HTTP API server.
type Server struct {
	db      *store.DB
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database and version string.
func New(db *store.DB, version string) *Server {
	s := &Server{
		db:      db,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/subjects", s.handleListSubjects)
		r.Post("/subjects", s.handleCreateSubject)
		r.Get("/subjects/{subjectID}", s.handleGetSubject)
		r.Delete("/subjects/{subjectID}", s.handleDeleteSubject)
		r.Get("/subjects/{subjectID}/topics", s.handleListTopics)
		r.Post("/subjects/{subjectID}/topics", s.handleCreateTopic)

		r.Get("/topics/{topicID}", s.handleGetTopic)
		r.Delete("/topics/{topicID}", s.handleDeleteTopic)
		r.Post("/topics/{topicID}/review", s.handleReviewTopic)
		r.Get("/topics/{topicID}/preview", s.handlePreviewTopic)
		r.Get("/topics/{topicID}/retention", s.handleTopicRetention)
		r.Get("/topics/{topicID}/history", s.handleTopicHistory)

		r.Get("/due", s.handleDue)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

// schedulerConfig loads the stored raw config and normalizes it. Reads go
// through here so a corrupted settings row degrades to defaults everywhere.
func (s *Server) schedulerConfig() (fsrs.Config, error) {
	raw, err := s.db.LoadSchedulerConfig()
	if err != nil {
		return fsrs.Config{}, err
	}
	return fsrs.NormalizeConfig(raw), nil
}
