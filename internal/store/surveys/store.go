// Package surveys owns the in-memory survey collection: the list, the
// focused survey, and the CRUD and status-transition actions against the
// survey service.
package surveys

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/encuestas-platform/client-layer/internal/domain/response"
	"github.com/encuestas-platform/client-layer/internal/domain/survey"
	"github.com/encuestas-platform/client-layer/internal/httputil"
	"github.com/encuestas-platform/client-layer/internal/persist"
	"github.com/encuestas-platform/client-layer/pkg/logger"
)

// StoreID keys this store's persisted payload.
const StoreID = "surveys"

// Fallback messages when the backend supplies none.
const (
	errFetchAll = "Error al cargar encuestas"
	errFetchOne = "Error al cargar encuesta"
	errCreate   = "Error al crear encuesta"
	errUpdate   = "Error al actualizar encuesta"
	errDelete   = "Error al eliminar encuesta"
	errStatus   = "Error al actualizar estado"
	errPublish  = "Error al publicar encuesta"
	errClose    = "Error al cerrar encuesta"
)

// API is the slice of the survey service the store drives.
type API interface {
	List(ctx context.Context) ([]survey.Survey, error)
	Get(ctx context.Context, id string) (survey.Survey, error)
	Create(ctx context.Context, req survey.CreateRequest) (survey.Survey, error)
	Update(ctx context.Context, id string, req survey.UpdateRequest) (survey.Survey, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) (survey.Survey, error)
	Close(ctx context.Context, id string) (survey.Survey, error)
	UpdateStatus(ctx context.Context, id string, status survey.Status) (survey.Survey, error)
	Responses(ctx context.Context, id string) ([]response.SurveyResponse, error)
	Duplicate(ctx context.Context, id string) (survey.Survey, error)
}

// State is a point-in-time copy of the collection.
type State struct {
	Surveys       []survey.Survey
	CurrentSurvey *survey.Survey
	Loading       bool
	LastError     string
}

// Store is the process-wide survey collection container. Actions follow
// one pattern: set loading, clear error, call the service, apply the
// returned object by identity, record a reduced message on failure, and
// always clear loading on the way out.
type Store struct {
	svc     API
	persist *persist.Adapter
	log     *logger.Logger

	mu        sync.Mutex
	surveys   []survey.Survey
	current   *survey.Survey
	loading   bool
	lastError string
}

// New constructs the store. No fields are mirrored by default, but the
// store still registers with the adapter so the persistence config stays
// the single decision point.
func New(svc API, adapter *persist.Adapter, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("surveys")
	}
	s := &Store{svc: svc, persist: adapter, log: log}
	if adapter != nil {
		adapter.Register(StoreID, s.snapshot)
		s.rehydrate(adapter.Rehydrate(StoreID))
	}
	return s
}

func (s *Store) snapshot() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]json.RawMessage, 2)
	if raw, err := json.Marshal(s.surveys); err == nil {
		out["surveys"] = raw
	}
	if raw, err := json.Marshal(s.current); err == nil {
		out["currentSurvey"] = raw
	}
	return out
}

func (s *Store) rehydrate(restored map[string]json.RawMessage) {
	if raw, ok := restored["surveys"]; ok {
		var list []survey.Survey
		if err := json.Unmarshal(raw, &list); err == nil {
			s.surveys = list
		}
	}
	if raw, ok := restored["currentSurvey"]; ok {
		var cur *survey.Survey
		if err := json.Unmarshal(raw, &cur); err == nil {
			s.current = cur
		}
	}
}

func (s *Store) flush() {
	if s.persist != nil {
		s.persist.Flush(StoreID)
	}
}

func (s *Store) beginAction() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Store) endAction() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) fail(err error, fallback, operation string) string {
	msg := httputil.ErrorMessage(err, fallback)
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
	s.log.WithError(err).Warnf("%s failed", operation)
	return msg
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Surveys:   make([]survey.Survey, len(s.surveys)),
		Loading:   s.loading,
		LastError: s.lastError,
	}
	copy(st.Surveys, s.surveys)
	if s.current != nil {
		cur := *s.current
		st.CurrentSurvey = &cur
	}
	return st
}

// FetchSurveys replaces the whole collection with the server's list. A
// failure is recorded in the error field but not returned: list refreshes
// are fire-and-observe, the caller polls LastError.
func (s *Store) FetchSurveys(ctx context.Context) {
	s.beginAction()
	defer s.endAction()

	list, err := s.svc.List(ctx)
	if err != nil {
		s.fail(err, errFetchAll, "fetch surveys")
		return
	}

	s.mu.Lock()
	s.surveys = list
	s.mu.Unlock()
	s.flush()
}

// FetchSurvey loads one survey, focuses it, and returns it. Unlike a list
// refresh the failure is returned so the caller can react directly.
func (s *Store) FetchSurvey(ctx context.Context, id string) (survey.Survey, error) {
	s.beginAction()
	defer s.endAction()

	sv, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(err, errFetchOne, "fetch survey")
		return survey.Survey{}, err
	}

	s.mu.Lock()
	cur := sv
	s.current = &cur
	s.mu.Unlock()
	s.flush()
	return sv, nil
}

// CreateSurvey posts a new survey and prepends the returned object, newest
// first.
func (s *Store) CreateSurvey(ctx context.Context, req survey.CreateRequest) (survey.Survey, error) {
	s.beginAction()
	defer s.endAction()

	created, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(err, errCreate, "create survey")
		return survey.Survey{}, err
	}

	s.mu.Lock()
	s.surveys = append([]survey.Survey{created}, s.surveys...)
	s.mu.Unlock()
	s.flush()

	s.log.WithField("survey_id", created.ID).Info("survey created")
	return created, nil
}

// DuplicateSurvey clones a survey server-side; the clone joins the front
// of the collection like any other newly created survey.
func (s *Store) DuplicateSurvey(ctx context.Context, id string) (survey.Survey, error) {
	s.beginAction()
	defer s.endAction()

	clone, err := s.svc.Duplicate(ctx, id)
	if err != nil {
		s.fail(err, errCreate, "duplicate survey")
		return survey.Survey{}, err
	}

	s.mu.Lock()
	s.surveys = append([]survey.Survey{clone}, s.surveys...)
	s.mu.Unlock()
	s.flush()

	s.log.WithField("survey_id", clone.ID).WithField("source_id", id).Info("survey duplicated")
	return clone, nil
}

// UpdateSurvey puts partial data and substitutes the full returned object
// into the list and, when focused, into the current survey.
func (s *Store) UpdateSurvey(ctx context.Context, id string, req survey.UpdateRequest) (survey.Survey, error) {
	s.beginAction()
	defer s.endAction()

	updated, err := s.svc.Update(ctx, id, req)
	if err != nil {
		s.fail(err, errUpdate, "update survey")
		return survey.Survey{}, err
	}

	s.mu.Lock()
	s.replaceLocked(id, updated)
	if s.current != nil && s.current.ID == id {
		cur := updated
		s.current = &cur
	}
	s.mu.Unlock()
	s.flush()
	return updated, nil
}

// DeleteSurvey removes the survey remotely, then locally; the focused
// survey is cleared when it was the one deleted.
func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	s.beginAction()
	defer s.endAction()

	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(err, errDelete, "delete survey")
		return err
	}

	s.mu.Lock()
	kept := s.surveys[:0]
	for _, sv := range s.surveys {
		if sv.ID != id {
			kept = append(kept, sv)
		}
	}
	s.surveys = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	s.flush()

	s.log.WithField("survey_id", id).Info("survey deleted")
	return nil
}

// UpdateSurveyStatus performs a generic status transition and substitutes
// the returned object into the list. The focused survey is left untouched,
// matching the behavior the views were built against.
func (s *Store) UpdateSurveyStatus(ctx context.Context, id string, status survey.Status) (survey.Survey, error) {
	return s.transition(ctx, id, "update survey status", errStatus, func(ctx context.Context) (survey.Survey, error) {
		return s.svc.UpdateStatus(ctx, id, status)
	})
}

// PublishSurvey transitions a survey to PUBLICADA.
func (s *Store) PublishSurvey(ctx context.Context, id string) (survey.Survey, error) {
	return s.transition(ctx, id, "publish survey", errPublish, func(ctx context.Context) (survey.Survey, error) {
		return s.svc.Publish(ctx, id)
	})
}

// CloseSurvey transitions a survey to FINALIZADA.
func (s *Store) CloseSurvey(ctx context.Context, id string) (survey.Survey, error) {
	return s.transition(ctx, id, "close survey", errClose, func(ctx context.Context) (survey.Survey, error) {
		return s.svc.Close(ctx, id)
	})
}

func (s *Store) transition(ctx context.Context, id, operation, fallback string, call func(context.Context) (survey.Survey, error)) (survey.Survey, error) {
	s.beginAction()
	defer s.endAction()

	updated, err := call(ctx)
	if err != nil {
		s.fail(err, fallback, operation)
		return survey.Survey{}, err
	}

	s.mu.Lock()
	s.replaceLocked(id, updated)
	s.mu.Unlock()
	s.flush()

	s.log.WithField("survey_id", id).WithField("status", updated.Status).Info("survey status changed")
	return updated, nil
}

func (s *Store) replaceLocked(id string, sv survey.Survey) {
	for i := range s.surveys {
		if s.surveys[i].ID == id {
			s.surveys[i] = sv
			return
		}
	}
}

// ActiveSurveys returns the published surveys.
func (s *Store) ActiveSurveys() []survey.Survey {
	return s.SurveysByStatus(survey.StatusPublished)
}

// TotalSurveys returns the collection size.
func (s *Store) TotalSurveys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.surveys)
}

// TotalResponses sums the reported response counts across the collection,
// treating missing counts as zero.
func (s *Store) TotalResponses() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, sv := range s.surveys {
		total += sv.ResponseCount()
	}
	return total
}

// SurveysByStatus filters the collection by lifecycle state.
func (s *Store) SurveysByStatus(status survey.Status) []survey.Survey {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []survey.Survey
	for _, sv := range s.surveys {
		if sv.Status == status {
			out = append(out, sv)
		}
	}
	return out
}

// LastError returns the recorded failure message, empty when none.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ClearError resets the recorded failure message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

// ClearCurrentSurvey drops the focused survey.
func (s *Store) ClearCurrentSurvey() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
