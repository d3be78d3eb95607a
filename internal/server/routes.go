package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/revise-app/revise/internal/fsrs"
	"github.com/revise-app/revise/internal/store"
)

type topicJSON struct {
	ID              string      `json:"id"`
	SubjectID       string      `json:"subject_id"`
	Name            string      `json:"name"`
	Notes           string      `json:"notes,omitempty"`
	Difficulty      float64     `json:"difficulty"`
	DifficultyLabel string      `json:"difficulty_label,omitempty"`
	Stability       float64     `json:"stability"`
	LastReview      string      `json:"last_review,omitempty"`
	NextReview      string      `json:"next_review,omitempty"`
	Status          fsrs.Status `json:"status"`
}

func topicToJSON(t *store.Topic, today time.Time) topicJSON {
	state := t.State()
	out := topicJSON{
		ID:         t.ID,
		SubjectID:  t.SubjectID,
		Name:       t.Name,
		Notes:      t.Notes,
		Difficulty: t.Difficulty,
		Stability:  t.Stability,
		LastReview: t.LastReview,
		NextReview: t.NextReview,
		Status:     fsrs.ReviewStatus(state.NextReview, today),
	}
	if state.Reviewed() {
		out.DifficultyLabel = fsrs.DifficultyLabel(t.Difficulty)
	}
	return out
}

// queryDate reads an optional ?date=YYYY-MM-DD parameter. Zero time means
// "today" to the scheduler.
func queryDate(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.db.ListSubjects()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"subjects": subjects, "count": len(subjects)})
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}

	subject, err := s.db.CreateSubject(req.Name)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(subject)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := s.db.GetSubject(chi.URLParam(r, "subjectID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if subject == nil {
		http.Error(w, `{"error":"subject not found"}`, http.StatusNotFound)
		return
	}

	topics, err := s.db.ListTopics(subject.ID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]topicJSON, len(topics))
	for i := range topics {
		out[i] = topicToJSON(&topics[i], time.Time{})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"subject": subject,
		"topics":  out,
	})
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteSubject(chi.URLParam(r, "subjectID")); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.db.ListTopics(chi.URLParam(r, "subjectID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]topicJSON, len(topics))
	for i := range topics {
		out[i] = topicToJSON(&topics[i], time.Time{})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"topics": out, "count": len(out)})
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	var req struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}

	subject, err := s.db.GetSubject(subjectID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if subject == nil {
		http.Error(w, `{"error":"subject not found"}`, http.StatusNotFound)
		return
	}

	topic, err := s.db.CreateTopic(subjectID, req.Name, req.Notes)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(topicToJSON(topic, time.Time{}))
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.db.GetTopic(chi.URLParam(r, "topicID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if topic == nil {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(topicToJSON(topic, time.Time{}))
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteTopic(chi.URLParam(r, "topicID")); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func (s *Server) handleReviewTopic(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")

	var req struct {
		Rating      int    `json:"rating"`
		ElapsedDays *int   `json:"elapsed_days"`
		Date        string `json:"date"`
		Fuzz        bool   `json:"fuzz"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	rating := fsrs.Rating(req.Rating)
	if !rating.Valid() {
		http.Error(w, `{"error":"rating must be 1-4"}`, http.StatusBadRequest)
		return
	}

	var today time.Time
	if req.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		today = t
	}

	topic, err := s.db.GetTopic(topicID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if topic == nil {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return
	}

	cfg, err := s.schedulerConfig()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	before := topic.State()
	res := fsrs.Review(before, rating, cfg, fsrs.Options{
		CustomElapsedDays: req.ElapsedDays,
		ApplyFuzzing:      req.Fuzz,
		Today:             today,
	})

	entry := &store.ReviewEntry{
		ReviewedOn:       res.NewState.LastReview.Format("2006-01-02"),
		Rating:           int(rating),
		RatingLabel:      rating.Label(),
		DifficultyBefore: before.Difficulty,
		DifficultyAfter:  res.NewState.Difficulty,
		StabilityBefore:  before.Stability,
		StabilityAfter:   res.NewState.Stability,
		IntervalDays:     res.IntervalDays,
		Retrievability:   res.Retrievability,
		Algorithm:        cfg.Version.String(),
		Retention:        cfg.RequestedRetention,
	}
	if err := s.db.RecordReview(topic.ID, res.NewState, entry); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	topic.SetState(res.NewState)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"topic":          topicToJSON(topic, today),
		"review_number":  entry.ReviewNumber,
		"rating":         rating.Label(),
		"interval_days":  res.IntervalDays,
		"scheduled_days": res.ScheduledDays,
		"retrievability": res.Retrievability,
	})
}

func (s *Server) handlePreviewTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.db.GetTopic(chi.URLParam(r, "topicID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if topic == nil {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return
	}

	today, ok := queryDate(r)
	if !ok {
		http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	cfg, err := s.schedulerConfig()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	outcomes := fsrs.PreviewAllRatings(topic.State(), cfg, fsrs.Options{Today: today})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"topic_id": topic.ID,
		"outcomes": outcomes,
	})
}

func (s *Server) handleTopicRetention(w http.ResponseWriter, r *http.Request) {
	topic, err := s.db.GetTopic(chi.URLParam(r, "topicID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if topic == nil {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return
	}

	today, ok := queryDate(r)
	if !ok {
		http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	cfg, err := s.schedulerConfig()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	state := topic.State()
	elapsed := fsrs.ElapsedDays(state.LastReview, today)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"topic_id":       topic.ID,
		"reviewed":       state.Reviewed(),
		"stability":      state.Stability,
		"elapsed_days":   elapsed,
		"retrievability": fsrs.RetrievabilityAt(state.Stability, float64(elapsed), cfg),
	})
}

func (s *Server) handleTopicHistory(w http.ResponseWriter, r *http.Request) {
	topic, err := s.db.GetTopic(chi.URLParam(r, "topicID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if topic == nil {
		http.Error(w, `{"error":"topic not found"}`, http.StatusNotFound)
		return
	}

	entries, err := s.db.ListReviews(topic.ID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type entryJSON struct {
		ReviewNumber     int      `json:"review_number"`
		ReviewedOn       string   `json:"reviewed_on"`
		Rating           int      `json:"rating"`
		RatingLabel      string   `json:"rating_label"`
		DifficultyBefore float64  `json:"difficulty_before"`
		DifficultyAfter  float64  `json:"difficulty_after"`
		StabilityBefore  float64  `json:"stability_before"`
		StabilityAfter   float64  `json:"stability_after"`
		IntervalDays     int      `json:"interval_days"`
		Retrievability   *float64 `json:"retrievability"`
		Algorithm        string   `json:"algorithm"`
		Retention        float64  `json:"retention"`
	}

	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{
			ReviewNumber:     e.ReviewNumber,
			ReviewedOn:       e.ReviewedOn,
			Rating:           e.Rating,
			RatingLabel:      e.RatingLabel,
			DifficultyBefore: e.DifficultyBefore,
			DifficultyAfter:  e.DifficultyAfter,
			StabilityBefore:  e.StabilityBefore,
			StabilityAfter:   e.StabilityAfter,
			IntervalDays:     e.IntervalDays,
			Retrievability:   e.Retrievability,
			Algorithm:        e.Algorithm,
			Retention:        e.Retention,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"topic_id": topic.ID,
		"count":    len(out),
		"reviews":  out,
	})
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDate(r)
	if !ok {
		http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	if today.IsZero() {
		today = fsrs.Today()
	}

	due, err := s.db.ListDueTopics(today.Format("2006-01-02"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]topicJSON, len(due))
	for i := range due {
		out[i] = topicToJSON(&due[i], today)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"date":   today.Format("2006-01-02"),
		"count":  len(out),
		"topics": out,
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := s.db.LoadSchedulerConfig()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stored":    raw,
		"effective": fsrs.NormalizeConfig(raw).Raw(),
	})
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var raw fsrs.RawConfig
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	// Store what the user sent; normalization happens on every read. A bad
	// value can never wedge the scheduler, only degrade to defaults.
	if err := s.db.SaveSchedulerConfig(raw); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stored":    raw,
		"effective": fsrs.NormalizeConfig(raw).Raw(),
	})
}
