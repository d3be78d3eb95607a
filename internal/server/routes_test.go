package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// do runs one request against the server and decodes the JSON response.
func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) map[string]any {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d; body: %s", method, path, w.Code, wantStatus, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp
}

// testTopic creates a subject and topic over the API and returns their ids.
func testTopic(t *testing.T, srv *Server) (string, string) {
	t.Helper()
	subj := do(t, srv, "POST", "/api/subjects", `{"name":"Anatomy"}`, http.StatusCreated)
	subjectID := subj["id"].(string)
	topic := do(t, srv, "POST", "/api/subjects/"+subjectID+"/topics",
		`{"name":"Cranial nerves","notes":"12 pairs"}`, http.StatusCreated)
	return subjectID, topic["id"].(string)
}

func TestCreateSubjectValidation(t *testing.T) {
	srv := testServer(t)

	do(t, srv, "POST", "/api/subjects", `{}`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/subjects", `not json`, http.StatusBadRequest)
}

func TestSubjectLifecycle(t *testing.T) {
	srv := testServer(t)
	subjectID, topicID := testTopic(t, srv)

	resp := do(t, srv, "GET", "/api/subjects/"+subjectID, "", http.StatusOK)
	topics := resp["topics"].([]any)
	if len(topics) != 1 {
		t.Fatalf("topics = %d, want 1", len(topics))
	}

	list := do(t, srv, "GET", "/api/subjects", "", http.StatusOK)
	if list["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", list["count"])
	}

	do(t, srv, "DELETE", "/api/subjects/"+subjectID, "", http.StatusOK)
	do(t, srv, "GET", "/api/subjects/"+subjectID, "", http.StatusNotFound)
	do(t, srv, "GET", "/api/topics/"+topicID, "", http.StatusNotFound)
}

func TestCreateTopicUnknownSubject(t *testing.T) {
	srv := testServer(t)

	do(t, srv, "POST", "/api/subjects/nope/topics", `{"name":"x"}`, http.StatusNotFound)
}

func TestNewTopicNotScheduled(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	resp := do(t, srv, "GET", "/api/topics/"+topicID, "", http.StatusOK)
	if resp["stability"].(float64) != 0 {
		t.Errorf("stability = %v, want 0", resp["stability"])
	}
	status := resp["status"].(map[string]any)
	if status["text"] != "Not scheduled" {
		t.Errorf("status = %v, want Not scheduled", status["text"])
	}
	if _, ok := resp["difficulty_label"]; ok {
		t.Error("unreviewed topic carries a difficulty label")
	}
}

func TestReviewTopic(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	resp := do(t, srv, "POST", "/api/topics/"+topicID+"/review",
		`{"rating":3,"date":"2026-02-14"}`, http.StatusOK)

	if resp["rating"] != "Good" {
		t.Errorf("rating = %v, want Good", resp["rating"])
	}
	if resp["review_number"].(float64) != 1 {
		t.Errorf("review_number = %v, want 1", resp["review_number"])
	}
	// First review of a fresh item: stability w[2]=3.173, interval 3 days.
	if resp["interval_days"].(float64) != 3 {
		t.Errorf("interval_days = %v, want 3", resp["interval_days"])
	}
	if resp["retrievability"] != nil {
		t.Errorf("retrievability = %v, want null on first review", resp["retrievability"])
	}

	topic := resp["topic"].(map[string]any)
	if topic["last_review"] != "2026-02-14" || topic["next_review"] != "2026-02-17" {
		t.Errorf("dates = %v / %v", topic["last_review"], topic["next_review"])
	}
	if topic["stability"].(float64) != 3.173 {
		t.Errorf("stability = %v, want 3.173", topic["stability"])
	}
	if topic["difficulty_label"] == "" {
		t.Error("reviewed topic missing difficulty label")
	}
}

func TestReviewValidation(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":0}`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":5}`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":3,"date":"14/02/2026"}`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `not json`, http.StatusBadRequest)
	do(t, srv, "POST", "/api/topics/nope/review", `{"rating":3}`, http.StatusNotFound)
}

func TestReviewHistoryGrows(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":3,"date":"2026-02-14"}`, http.StatusOK)
	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":4,"date":"2026-02-17"}`, http.StatusOK)

	resp := do(t, srv, "GET", "/api/topics/"+topicID+"/history", "", http.StatusOK)
	if resp["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", resp["count"])
	}
	reviews := resp["reviews"].([]any)
	first := reviews[0].(map[string]any)
	second := reviews[1].(map[string]any)
	if first["review_number"].(float64) != 1 || second["review_number"].(float64) != 2 {
		t.Errorf("review numbers = %v, %v", first["review_number"], second["review_number"])
	}
	if first["retrievability"] != nil {
		t.Errorf("first review retrievability = %v, want null", first["retrievability"])
	}
	if second["retrievability"] == nil {
		t.Error("second review retrievability missing")
	}
	if first["algorithm"] != "fsrs5" {
		t.Errorf("algorithm = %v, want fsrs5", first["algorithm"])
	}
}

func TestPreviewDoesNotMutate(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	resp := do(t, srv, "GET", "/api/topics/"+topicID+"/preview?date=2026-02-14", "", http.StatusOK)
	outcomes := resp["outcomes"].([]any)
	if len(outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(outcomes))
	}

	var prev float64
	for i, raw := range outcomes {
		o := raw.(map[string]any)
		if o["rating"].(float64) != float64(i+1) {
			t.Errorf("outcome %d rating = %v", i, o["rating"])
		}
		ivl := o["interval_days"].(float64)
		if ivl < prev {
			t.Errorf("interval for rating %d shrank: %v < %v", i+1, ivl, prev)
		}
		prev = ivl
	}

	// The topic itself is untouched.
	topic := do(t, srv, "GET", "/api/topics/"+topicID, "", http.StatusOK)
	if topic["stability"].(float64) != 0 {
		t.Errorf("preview mutated topic: stability = %v", topic["stability"])
	}
	history := do(t, srv, "GET", "/api/topics/"+topicID+"/history", "", http.StatusOK)
	if history["count"].(float64) != 0 {
		t.Errorf("preview appended history: count = %v", history["count"])
	}
}

func TestTopicRetention(t *testing.T) {
	srv := testServer(t)
	_, topicID := testTopic(t, srv)

	// Never reviewed: recall probability is 0.
	resp := do(t, srv, "GET", "/api/topics/"+topicID+"/retention?date=2026-02-14", "", http.StatusOK)
	if resp["reviewed"] != false || resp["retrievability"].(float64) != 0 {
		t.Errorf("unreviewed retention = %v / %v", resp["reviewed"], resp["retrievability"])
	}

	do(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"rating":3,"date":"2026-02-14"}`, http.StatusOK)

	// At the solved interval, recall should sit near the 0.9 target.
	resp = do(t, srv, "GET", "/api/topics/"+topicID+"/retention?date=2026-02-17", "", http.StatusOK)
	if resp["elapsed_days"].(float64) != 3 {
		t.Errorf("elapsed_days = %v, want 3", resp["elapsed_days"])
	}
	r := resp["retrievability"].(float64)
	if r < 0.88 || r > 0.92 {
		t.Errorf("retrievability = %v, want ~0.9", r)
	}

	// Same day as review: full recall.
	resp = do(t, srv, "GET", "/api/topics/"+topicID+"/retention?date=2026-02-14", "", http.StatusOK)
	if resp["retrievability"].(float64) != 1 {
		t.Errorf("same-day retrievability = %v, want 1", resp["retrievability"])
	}

	// A date before the last review still yields a valid probability.
	resp = do(t, srv, "GET", "/api/topics/"+topicID+"/retention?date=2026-02-10", "", http.StatusOK)
	if resp["retrievability"].(float64) != 1 {
		t.Errorf("pre-review retrievability = %v, want 1", resp["retrievability"])
	}
}

func TestDueEndpoint(t *testing.T) {
	srv := testServer(t)
	subjectID, _ := testTopic(t, srv)

	mk := func(name, reviewDate string) string {
		topic := do(t, srv, "POST", "/api/subjects/"+subjectID+"/topics",
			fmt.Sprintf(`{"name":%q}`, name), http.StatusCreated)
		id := topic["id"].(string)
		do(t, srv, "POST", "/api/topics/"+id+"/review",
			fmt.Sprintf(`{"rating":3,"date":%q}`, reviewDate), http.StatusOK)
		return id
	}

	// Good on a fresh topic schedules 3 days out.
	mk("overdue", "2026-03-01")   // due 2026-03-04
	mk("due today", "2026-03-07") // due 2026-03-10
	mk("future", "2026-03-09")    // due 2026-03-12

	resp := do(t, srv, "GET", "/api/due?date=2026-03-10", "", http.StatusOK)
	if resp["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2; body: %v", resp["count"], resp)
	}
	topics := resp["topics"].([]any)
	first := topics[0].(map[string]any)
	second := topics[1].(map[string]any)
	if first["name"] != "overdue" || second["name"] != "due today" {
		t.Errorf("order = %v, %v", first["name"], second["name"])
	}
	status := first["status"].(map[string]any)
	if status["urgency"] != "overdue" || status["text"] != "Overdue by 6 days" {
		t.Errorf("status = %v", status)
	}
	if second["status"].(map[string]any)["text"] != "Due today" {
		t.Errorf("second status = %v", second["status"])
	}
}

func TestConfigRoundTrip(t *testing.T) {
	srv := testServer(t)

	resp := do(t, srv, "GET", "/api/config", "", http.StatusOK)
	effective := resp["effective"].(map[string]any)
	if effective["version"] != "fsrs5" || effective["requested_retention"].(float64) != 0.9 {
		t.Errorf("defaults = %v", effective)
	}

	resp = do(t, srv, "PUT", "/api/config",
		`{"version":"fsrs6","requested_retention":0.85,"max_interval_days":365}`, http.StatusOK)
	effective = resp["effective"].(map[string]any)
	if effective["version"] != "fsrs6" || effective["requested_retention"].(float64) != 0.85 {
		t.Errorf("effective after put = %v", effective)
	}

	resp = do(t, srv, "GET", "/api/config", "", http.StatusOK)
	if resp["effective"].(map[string]any)["version"] != "fsrs6" {
		t.Errorf("config not persisted: %v", resp)
	}
}

func TestConfigNormalizesGarbage(t *testing.T) {
	srv := testServer(t)

	// Out-of-range values are stored as sent but degrade on the effective
	// side; scheduling keeps working.
	resp := do(t, srv, "PUT", "/api/config",
		`{"version":"fsrs99","requested_retention":7.5,"custom_weights":[1,2,3]}`, http.StatusOK)
	effective := resp["effective"].(map[string]any)
	if effective["version"] != "fsrs5" {
		t.Errorf("version = %v, want fsrs5", effective["version"])
	}
	if effective["requested_retention"].(float64) != 0.999 {
		t.Errorf("retention = %v, want 0.999", effective["requested_retention"])
	}
	if _, ok := effective["custom_weights"]; ok {
		t.Errorf("wrong-arity weights survived: %v", effective["custom_weights"])
	}
}
