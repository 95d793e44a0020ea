// Package testutil provides common fixtures and fake-backend helpers for
// the client layer's tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/encuestas-platform/client-layer/internal/domain/auth"
	"github.com/encuestas-platform/client-layer/internal/domain/survey"
)

// NewSurvey builds a CREADA survey fixture with a fresh id.
func NewSurvey(name string) survey.Survey {
	return survey.Survey{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "fixture",
		Version:     1,
		Status:      survey.StatusCreated,
		CreatedAt:   "2026-01-10T09:00:00Z",
		ModifiedAt:  "2026-01-10T09:00:00Z",
		AdminID:     "admin-1",
		Questions: []survey.Question{
			{
				ID:       uuid.NewString(),
				Text:     "¿Cómo nos conociste?",
				Type:     survey.SingleChoice,
				Required: true,
				Options:  survey.ChoiceOptions("Internet", "Prensa", "Otro"),
				Order:    1,
			},
			{
				ID:    uuid.NewString(),
				Text:  "Comentarios",
				Type:  survey.Text,
				Order: 2,
			},
		},
	}
}

// NewSurveyWithResponses builds a survey fixture reporting a response count.
func NewSurveyWithResponses(name string, status survey.Status, total int) survey.Survey {
	sv := NewSurvey(name)
	sv.Status = status
	sv.TotalResponses = &total
	return sv
}

// NewUser builds an active admin user fixture.
func NewUser(username string) auth.User {
	return auth.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Alicia",
		LastName:  "García",
		Roles:     []string{auth.AdminRole},
		Active:    true,
	}
}

// JSONHandler replies to every request with the given status and payload.
func JSONHandler(t *testing.T, status int, payload interface{}) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if payload != nil {
			if err := json.NewEncoder(w).Encode(payload); err != nil {
				t.Errorf("encode fake response: %v", err)
			}
		}
	}
}

// Route pairs "METHOD /path" with its canned reply.
type Route struct {
	Status  int
	Payload interface{}
}

// Backend serves a fixed routing table and records request paths in order.
type Backend struct {
	t      *testing.T
	server *httptest.Server
	routes map[string]Route

	mu       sync.Mutex
	requests []string
}

// NewBackend starts a fake backend. Unrouted requests fail the test.
func NewBackend(t *testing.T, routes map[string]Route) *Backend {
	t.Helper()
	b := &Backend{t: t, routes: routes}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string { return b.server.URL }

// Requests returns the "METHOD /path" keys seen so far, in arrival order.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.requests = append(b.requests, key)
	b.mu.Unlock()

	route, ok := b.routes[key]
	if !ok {
		b.t.Errorf("unexpected request %s", key)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.Status)
	if route.Payload != nil {
		if err := json.NewEncoder(w).Encode(route.Payload); err != nil {
			b.t.Errorf("encode fake response: %v", err)
		}
	}
}
