// Package styletest is an in-process fake of the Markup AI platform API.
// It implements the submission and workflow-status contract with
// scripted status sequences, backing the toolkit's end-to-end tests and
// the mockapi binary.
package styletest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markupai/toolkit-go/pkg/models"
)

// Server simulates the platform: submissions allocate a workflow that
// steps through a scripted status sequence on each status read.
type Server struct {
	apiKey      string
	pending     []string // statuses served before the terminal one
	failMsg     string
	fail        bool
	emptyResult bool

	mu        sync.Mutex
	workflows map[string]*workflowState
	guides    map[string]models.StyleGuide
	counts    map[string]int
}

type workflowState struct {
	remaining []string
	terminal  any
}

// Option configures a Server.
type Option func(*Server)

// WithPendingStatuses sets the statuses served before the terminal
// response. Defaults to one "queued" followed by one "running".
func WithPendingStatuses(statuses ...string) Option {
	return func(s *Server) { s.pending = statuses }
}

// WithFailure makes every workflow end in the failed state with the
// given error_message ("" omits the field).
func WithFailure(message string) Option {
	return func(s *Server) {
		s.fail = true
		s.failMsg = message
	}
}

// WithEmptyResult makes every workflow complete without a result
// payload, simulating a platform bug where a terminal response lacks
// the resource body.
func WithEmptyResult() Option {
	return func(s *Server) { s.emptyResult = true }
}

// New creates a fake platform that accepts the given API key.
func New(apiKey string, opts ...Option) *Server {
	s := &Server{
		apiKey:    apiKey,
		pending:   []string{"queued", "running"},
		workflows: make(map[string]*workflowState),
		guides:    make(map[string]models.StyleGuide),
		counts:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Requests reports how many requests hit the given "METHOD /path" key.
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

// RequestsMatching sums the counts of every "METHOD /path" key with the
// given prefix; useful for status routes whose paths embed workflow IDs.
func (s *Server) RequestsMatching(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for key, n := range s.counts {
		if strings.HasPrefix(key, prefix) {
			total += n
		}
	}
	return total
}

// Handler builds the chi router for the fake platform.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)
	r.Use(s.authenticate)

	for _, resource := range []string{"checks", "rewrites", "suggestions"} {
		base := "/v1/style/" + resource
		r.Post(base, s.submitStyle(resource))
		r.Get(base+"/{workflowID}", s.pollWorkflow)
	}

	r.Get("/v1/style-guides", s.listGuides)
	r.Post("/v1/style-guides", s.createGuide)
	r.Get("/v1/style-guides/{id}", s.getGuideOrWorkflow)
	r.Put("/v1/style-guides/{id}", s.updateGuide)
	r.Delete("/v1/style-guides/{id}", s.deleteGuide)

	r.Get("/v1/constants", s.constants)

	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authenticate accepts the key as either a bearer token or x-api-key.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if auth := r.Header.Get("Authorization"); key == "" && auth != "" {
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				key = strings.TrimSpace(parts[1])
			}
		}
		if key != s.apiKey {
			writeError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newWorkflow registers a scripted workflow and returns its ID.
func (s *Server) newWorkflow(terminal any) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.workflows[id] = &workflowState{
		remaining: append([]string(nil), s.pending...),
		terminal:  terminal,
	}
	s.mu.Unlock()
	return id
}

func (s *Server) submitStyle(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.StyleAnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Request body is not valid JSON")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusUnprocessableEntity, "Field 'content' is required")
			return
		}

		id := s.newWorkflow(s.styleTerminal(resource, req))
		writeJSON(w, http.StatusAccepted, models.WorkflowAck{
			WorkflowID: id,
			Status:     "processing",
		})
	}
}

// styleTerminal builds the terminal body a style workflow will serve.
// The fake "house style" collapses runs of whitespace so rewrites are
// deterministic without being identity.
func (s *Server) styleTerminal(resource string, req models.StyleAnalysisRequest) any {
	scores := models.ScoreSummary{Quality: 87.5, Clarity: 91.0, Consistency: 78.3}
	issues := []models.Issue{{
		Original:   "teh",
		Suggestion: "the",
		Category:   "spelling",
		StartIndex: 0,
	}}

	switch resource {
	case "rewrites":
		return models.RewriteResult{
			MergedText: strings.Join(strings.Fields(req.Content), " "),
			Scores:     scores,
			Issues:     issues,
		}
	case "suggestions":
		return models.SuggestionResult{Scores: scores, Issues: issues}
	default:
		return models.CheckResult{Scores: scores, Issues: issues}
	}
}

// pollWorkflow steps a workflow's script: each read consumes one pending
// status; once exhausted, the terminal response repeats forever.
func (s *Server) pollWorkflow(w http.ResponseWriter, r *http.Request) {
	s.serveWorkflow(w, chi.URLParam(r, "workflowID"))
}

func (s *Server) serveWorkflow(w http.ResponseWriter, id string) {
	s.mu.Lock()
	wf, ok := s.workflows[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Workflow not found")
		return
	}
	if len(wf.remaining) > 0 {
		status := wf.remaining[0]
		wf.remaining = wf.remaining[1:]
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, models.WorkflowAck{WorkflowID: id, Status: status})
		return
	}
	terminal := wf.terminal
	s.mu.Unlock()

	if s.fail {
		writeJSON(w, http.StatusOK, models.WorkflowAck{
			WorkflowID:   id,
			Status:       string(models.StatusFailed),
			ErrorMessage: s.failMsg,
		})
		return
	}
	if s.emptyResult {
		writeJSON(w, http.StatusOK, models.WorkflowAck{
			WorkflowID: id,
			Status:     string(models.StatusCompleted),
		})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		models.WorkflowAck
		Result any `json:"result"`
	}{
		WorkflowAck: models.WorkflowAck{WorkflowID: id, Status: string(models.StatusCompleted)},
		Result:      terminal,
	})
}

func (s *Server) listGuides(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	guides := make([]models.StyleGuide, 0, len(s.guides))
	for _, g := range s.guides {
		guides = append(guides, g)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, guides)
}

func (s *Server) createGuide(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Request body is not valid multipart form data")
		return
	}
	name := r.FormValue("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Field 'name' is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "File part 'file' is required")
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	now := time.Now().UTC()
	guide := models.StyleGuide{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.guides[guide.ID] = guide
	s.mu.Unlock()

	id := s.newWorkflow(guide)
	writeJSON(w, http.StatusAccepted, models.WorkflowAck{WorkflowID: id, Status: "processing"})
}

// getGuideOrWorkflow serves either an ingestion workflow snapshot or a
// stored guide; workflow IDs and guide IDs share the route.
func (s *Server) getGuideOrWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, isWorkflow := s.workflows[id]
	guide, isGuide := s.guides[id]
	s.mu.Unlock()

	if isWorkflow {
		s.serveWorkflow(w, id)
		return
	}
	if isGuide {
		writeJSON(w, http.StatusOK, guide)
		return
	}
	writeError(w, http.StatusNotFound, "Style guide not found")
}

func (s *Server) updateGuide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Field 'name' is required")
		return
	}

	s.mu.Lock()
	guide, ok := s.guides[id]
	if ok {
		guide.Name = req.Name
		guide.UpdatedAt = time.Now().UTC()
		s.guides[id] = guide
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Style guide not found")
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (s *Server) deleteGuide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.guides[id]
	delete(s.guides, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Style guide not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) constants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.Constants{
		Dialects: []string{"american_english", "british_english", "canadian_english", "australian_english"},
		Tones:    []string{"academic", "business", "casual", "conversational", "formal", "technical"},
	})
}
