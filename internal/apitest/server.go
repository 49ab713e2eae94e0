// Package apitest provides an in-process fake of the interview backend for
// tests and local runs.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"interview-console/internal/api"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names, usable with Fail
const (
	RouteStats           = "stats"
	RouteListInterviews  = "listInterviews"
	RouteCreateInterview = "createInterview"
	RouteSubmitAnswer    = "submitAnswer"
	RouteListQuestions   = "listQuestions"
	RouteCreateQuestion  = "createQuestion"
)

// Request is a recorded incoming request
type Request struct {
	Route     string
	Method    string
	Path      string
	RequestID string
	Body      string
}

type failure struct {
	status int
	body   string
}

// Backend is the fake backend state and its HTTP handler
type Backend struct {
	mu           sync.Mutex
	questions    []api.Question
	interviews   []*api.Interview
	averageScore float64
	failures     map[string]failure
	requests     []Request
	router       *mux.Router
}

// NewBackend creates an empty fake backend
func NewBackend() *Backend {
	b := &Backend{
		failures: make(map[string]failure),
	}

	r := mux.NewRouter()
	r.Use(b.record)
	r.HandleFunc("/api/interview-stats", b.handleStats).Methods(http.MethodGet).Name(RouteStats)
	r.HandleFunc("/api/interviews", b.handleListInterviews).Methods(http.MethodGet).Name(RouteListInterviews)
	r.HandleFunc("/api/interviews", b.handleCreateInterview).Methods(http.MethodPost).Name(RouteCreateInterview)
	r.HandleFunc("/api/interviews/{id}/questions/{qid}", b.handleSubmitAnswer).Methods(http.MethodPost).Name(RouteSubmitAnswer)
	r.HandleFunc("/api/questions", b.handleListQuestions).Methods(http.MethodGet).Name(RouteListQuestions)
	r.HandleFunc("/api/questions", b.handleCreateQuestion).Methods(http.MethodPost).Name(RouteCreateQuestion)
	b.router = r

	return b
}

// NewServer starts an httptest server around a fresh backend
func NewServer() (*httptest.Server, *Backend) {
	b := NewBackend()
	return httptest.NewServer(b), b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// AddQuestion seeds the question bank. An empty id is generated.
func (b *Backend) AddQuestion(q api.Question) api.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	b.questions = append(b.questions, q)
	return q
}

// SetAverageScore sets the score reported by the stats endpoint
func (b *Backend) SetAverageScore(score float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.averageScore = score
}

// Fail makes every request to route answer with status and body until Recover
func (b *Backend) Fail(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, body: body}
}

// Recover clears an injected failure
func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Requests returns the recorded requests in arrival order
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Interview returns a copy of the stored session
func (b *Backend) Interview(id string) (api.Interview, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, iv := range b.interviews {
		if iv.ID == id {
			return cloneInterview(iv), true
		}
	}
	return api.Interview{}, false
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := ""
		if current := mux.CurrentRoute(r); current != nil {
			route = current.GetName()
		}

		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Route:     route,
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      string(body),
		})
		f, failing := b.failures[route]
		b.mu.Unlock()

		if failing {
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[string]int)
	for _, iv := range b.interviews {
		for _, q := range iv.Questions {
			counts[q.Text]++
		}
	}
	top := make([]api.QuestionUsage, 0, len(counts))
	for text, n := range counts {
		top = append(top, api.QuestionUsage{Question: text, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Question < top[j].Question
	})
	if len(top) > 5 {
		top = top[:5]
	}

	writeJSON(w, http.StatusOK, api.Stats{
		TotalInterviews: len(b.interviews),
		AverageScore:    b.averageScore,
		TopQuestions:    top,
	})
}

func (b *Backend) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]api.Interview, 0, len(b.interviews))
	for _, iv := range b.interviews {
		out = append(out, cloneInterview(iv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var in api.NewInterview
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorBody{Message: "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var picked []api.Question
	for _, q := range b.questions {
		if strings.EqualFold(q.Domain, in.Domain) && strings.EqualFold(q.TechStack, in.TechStack) && q.Difficulty == in.Difficulty {
			picked = append(picked, q)
		}
	}
	if len(picked) == 0 {
		picked = []api.Question{{
			ID:         uuid.New().String(),
			Text:       fmt.Sprintf("Walk us through a recent %s project.", in.TechStack),
			Domain:     in.Domain,
			TechStack:  in.TechStack,
			Difficulty: in.Difficulty,
			Tags:       []string{},
		}}
	}

	iv := &api.Interview{
		ID:            uuid.New().String(),
		CandidateName: in.CandidateName,
		Questions:     picked,
		Responses:     map[string]string{},
	}
	b.interviews = append(b.interviews, iv)
	writeJSON(w, http.StatusCreated, cloneInterview(iv))
}

// handleSubmitAnswer stores the answer and moves the cursor forward when the
// current question was answered.
func (b *Backend) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var in api.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorBody{Message: "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, iv := range b.interviews {
		if iv.ID != vars["id"] {
			continue
		}
		for i, q := range iv.Questions {
			if q.ID != vars["qid"] {
				continue
			}
			iv.Responses[q.ID] = in.Answer
			if i == iv.CurrentQuestionIndex && i < len(iv.Questions)-1 {
				iv.CurrentQuestionIndex++
			}
			writeJSON(w, http.StatusOK, cloneInterview(iv))
			return
		}
		writeJSON(w, http.StatusNotFound, api.ErrorBody{Message: "question not in interview"})
		return
	}
	writeJSON(w, http.StatusNotFound, api.ErrorBody{Message: "interview not found"})
}

func (b *Backend) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]api.Question, len(b.questions))
	copy(out, b.questions)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in api.NewQuestion
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorBody{Message: "invalid body"})
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeJSON(w, http.StatusBadRequest, api.ErrorBody{Message: "text is required"})
		return
	}

	q := api.Question{
		ID:          uuid.New().String(),
		Text:        in.Text,
		Domain:      in.Domain,
		TechStack:   in.TechStack,
		Difficulty:  in.Difficulty,
		IdealAnswer: in.IdealAnswer,
		Tags:        append([]string{}, in.Tags...),
	}

	b.mu.Lock()
	b.questions = append(b.questions, q)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, q)
}

func cloneInterview(iv *api.Interview) api.Interview {
	out := *iv
	out.Questions = append([]api.Question(nil), iv.Questions...)
	out.Responses = make(map[string]string, len(iv.Responses))
	for k, v := range iv.Responses {
		out.Responses[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
