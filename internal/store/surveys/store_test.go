package surveys

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/encuestas-platform/client-layer/internal/domain/response"
	"github.com/encuestas-platform/client-layer/internal/domain/survey"
	"github.com/encuestas-platform/client-layer/internal/httputil"
	"github.com/encuestas-platform/client-layer/pkg/logger"
)

type fakeSurveyAPI struct {
	mu sync.Mutex

	listResp  [][]survey.Survey // consumed in call order
	listBlock []chan struct{}   // optional gate per call
	listErr   error
	getResp   survey.Survey
	getErr    error
	created   survey.Survey
	createErr error
	updated   survey.Survey
	updateErr error
	deleteErr error
	statusFn  func(id string, status survey.Status) (survey.Survey, error)

	listCalls int
}

func (f *fakeSurveyAPI) List(_ context.Context) ([]survey.Survey, error) {
	f.mu.Lock()
	call := f.listCalls
	f.listCalls++
	var gate chan struct{}
	if call < len(f.listBlock) {
		gate = f.listBlock[call]
	}
	var resp []survey.Survey
	if call < len(f.listResp) {
		resp = f.listResp[call]
	}
	err := f.listErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return resp, err
}

func (f *fakeSurveyAPI) Get(_ context.Context, _ string) (survey.Survey, error) {
	return f.getResp, f.getErr
}

func (f *fakeSurveyAPI) Create(_ context.Context, _ survey.CreateRequest) (survey.Survey, error) {
	return f.created, f.createErr
}

func (f *fakeSurveyAPI) Update(_ context.Context, _ string, _ survey.UpdateRequest) (survey.Survey, error) {
	return f.updated, f.updateErr
}

func (f *fakeSurveyAPI) Delete(_ context.Context, _ string) error {
	return f.deleteErr
}

func (f *fakeSurveyAPI) Publish(_ context.Context, id string) (survey.Survey, error) {
	return f.statusFn(id, survey.StatusPublished)
}

func (f *fakeSurveyAPI) Close(_ context.Context, id string) (survey.Survey, error) {
	return f.statusFn(id, survey.StatusClosed)
}

func (f *fakeSurveyAPI) UpdateStatus(_ context.Context, id string, status survey.Status) (survey.Survey, error) {
	return f.statusFn(id, status)
}

func (f *fakeSurveyAPI) Responses(_ context.Context, _ string) ([]response.SurveyResponse, error) {
	return nil, nil
}

func (f *fakeSurveyAPI) Duplicate(_ context.Context, id string) (survey.Survey, error) {
	return f.created, f.createErr
}

func sv(id string, status survey.Status) survey.Survey {
	return survey.Survey{ID: id, Name: "Encuesta " + id, Status: status, Version: 1}
}

func svWithResponses(id string, status survey.Status, total int) survey.Survey {
	s := sv(id, status)
	s.TotalResponses = &total
	return s
}

func seed(s *Store, list ...survey.Survey) {
	s.mu.Lock()
	s.surveys = list
	s.mu.Unlock()
}

func TestFetchSurveysReplacesList(t *testing.T) {
	api := &fakeSurveyAPI{listResp: [][]survey.Survey{{sv("s1", survey.StatusCreated), sv("s2", survey.StatusPublished)}}}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("old", survey.StatusClosed))

	s.FetchSurveys(context.Background())

	snap := s.Snapshot()
	if len(snap.Surveys) != 2 {
		t.Fatalf("surveys = %d, want 2", len(snap.Surveys))
	}
	if snap.Surveys[0].ID != "s1" || snap.Surveys[1].ID != "s2" {
		t.Errorf("unexpected order: %s, %s", snap.Surveys[0].ID, snap.Surveys[1].ID)
	}
	if snap.Loading {
		t.Error("loading still set")
	}
}

func TestFetchSurveysFailureIsRecordedNotReturned(t *testing.T) {
	api := &fakeSurveyAPI{listErr: httputil.NewAPIError(500, []byte(`{"message":"caído"}`))}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusCreated))

	s.FetchSurveys(context.Background())

	if got := s.LastError(); got != "caído" {
		t.Errorf("LastError() = %q, want server message", got)
	}
	// The previous list survives a failed refresh.
	if n := s.TotalSurveys(); n != 1 {
		t.Errorf("TotalSurveys() = %d, want 1", n)
	}
	if s.Snapshot().Loading {
		t.Error("loading still set after failure")
	}
}

func TestFetchSurveySetsCurrentAndReturns(t *testing.T) {
	want := sv("s7", survey.StatusPublished)
	api := &fakeSurveyAPI{getResp: want}
	s := New(api, nil, logger.NewNop())

	got, err := s.FetchSurvey(context.Background(), "s7")
	if err != nil {
		t.Fatalf("FetchSurvey() error = %v", err)
	}
	if got.ID != "s7" {
		t.Errorf("returned id = %s, want s7", got.ID)
	}
	cur := s.Snapshot().CurrentSurvey
	if cur == nil || cur.ID != "s7" {
		t.Errorf("currentSurvey = %+v, want s7", cur)
	}
}

func TestFetchSurveyFailurePropagates(t *testing.T) {
	api := &fakeSurveyAPI{getErr: httputil.NewAPIError(404, []byte(`{"message":"No existe"}`))}
	s := New(api, nil, logger.NewNop())

	if _, err := s.FetchSurvey(context.Background(), "nope"); err == nil {
		t.Fatal("expected error")
	}
	if got := s.LastError(); got != "No existe" {
		t.Errorf("LastError() = %q, want No existe", got)
	}
}

func TestCreateSurveyPrepends(t *testing.T) {
	created := sv("new", survey.StatusCreated)
	api := &fakeSurveyAPI{created: created}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusPublished))

	got, err := s.CreateSurvey(context.Background(), survey.CreateRequest{Name: "Nueva"})
	if err != nil {
		t.Fatalf("CreateSurvey() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.Surveys[0].ID != got.ID {
		t.Errorf("surveys[0] = %s, want the created survey %s", snap.Surveys[0].ID, got.ID)
	}
	if len(snap.Surveys) != 2 {
		t.Errorf("surveys = %d, want 2", len(snap.Surveys))
	}
}

func TestCreateSurveyFailure(t *testing.T) {
	api := &fakeSurveyAPI{createErr: httputil.NewAPIError(400, []byte(`{"message":"Nombre requerido"}`))}
	s := New(api, nil, logger.NewNop())

	if _, err := s.CreateSurvey(context.Background(), survey.CreateRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if got := s.LastError(); got != "Nombre requerido" {
		t.Errorf("LastError() = %q", got)
	}
	if n := s.TotalSurveys(); n != 0 {
		t.Errorf("TotalSurveys() = %d, want 0", n)
	}
}

func TestUpdateSurveyReplacesListAndCurrent(t *testing.T) {
	updated := sv("s1", survey.StatusCreated)
	updated.Name = "Renombrada"
	updated.Version = 2
	api := &fakeSurveyAPI{updated: updated}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusCreated), sv("s2", survey.StatusCreated))
	cur := sv("s1", survey.StatusCreated)
	s.mu.Lock()
	s.current = &cur
	s.mu.Unlock()

	got, err := s.UpdateSurvey(context.Background(), "s1", survey.UpdateRequest{})
	if err != nil {
		t.Fatalf("UpdateSurvey() error = %v", err)
	}
	if got.Version != 2 {
		t.Errorf("returned version = %d, want 2", got.Version)
	}

	snap := s.Snapshot()
	// Full replacement of the matching element, not a merge.
	if snap.Surveys[0].Name != "Renombrada" || snap.Surveys[0].Version != 2 {
		t.Errorf("list entry not replaced: %+v", snap.Surveys[0])
	}
	if snap.Surveys[1].Name != "Encuesta s2" {
		t.Errorf("unrelated entry changed: %+v", snap.Surveys[1])
	}
	if snap.CurrentSurvey == nil || snap.CurrentSurvey.Version != 2 {
		t.Errorf("currentSurvey not replaced: %+v", snap.CurrentSurvey)
	}
}

func TestDeleteSurvey(t *testing.T) {
	api := &fakeSurveyAPI{}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusCreated), sv("s2", survey.StatusCreated))
	cur := sv("s1", survey.StatusCreated)
	s.mu.Lock()
	s.current = &cur
	s.mu.Unlock()

	if err := s.DeleteSurvey(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSurvey() error = %v", err)
	}

	snap := s.Snapshot()
	for _, entry := range snap.Surveys {
		if entry.ID == "s1" {
			t.Error("deleted survey still present")
		}
	}
	if len(snap.Surveys) != 1 {
		t.Errorf("surveys = %d, want 1", len(snap.Surveys))
	}
	if snap.CurrentSurvey != nil {
		t.Errorf("currentSurvey = %+v, want nil after deleting it", snap.CurrentSurvey)
	}
}

func TestDeleteSurveyKeepsUnrelatedCurrent(t *testing.T) {
	api := &fakeSurveyAPI{}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusCreated), sv("s2", survey.StatusCreated))
	cur := sv("s2", survey.StatusCreated)
	s.mu.Lock()
	s.current = &cur
	s.mu.Unlock()

	if err := s.DeleteSurvey(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().CurrentSurvey; got == nil || got.ID != "s2" {
		t.Errorf("currentSurvey = %+v, want s2 untouched", got)
	}
}

func TestPublishSurveyUpdatesOnlyMatchingEntry(t *testing.T) {
	api := &fakeSurveyAPI{statusFn: func(id string, status survey.Status) (survey.Survey, error) {
		out := sv(id, status)
		return out, nil
	}}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusCreated), sv("s2", survey.StatusCreated))
	cur := sv("s1", survey.StatusCreated)
	s.mu.Lock()
	s.current = &cur
	s.mu.Unlock()

	got, err := s.PublishSurvey(context.Background(), "s1")
	if err != nil {
		t.Fatalf("PublishSurvey() error = %v", err)
	}
	if got.Status != survey.StatusPublished {
		t.Errorf("returned status = %s, want PUBLICADA", got.Status)
	}

	snap := s.Snapshot()
	if snap.Surveys[0].Status != survey.StatusPublished {
		t.Errorf("surveys[0].Status = %s, want PUBLICADA", snap.Surveys[0].Status)
	}
	if snap.Surveys[1].Status != survey.StatusCreated {
		t.Errorf("surveys[1] touched: %s", snap.Surveys[1].Status)
	}
	// Status transitions deliberately leave the focused survey alone.
	if snap.CurrentSurvey.Status != survey.StatusCreated {
		t.Errorf("currentSurvey.Status = %s, want untouched CREADA", snap.CurrentSurvey.Status)
	}
}

func TestCloseAndUpdateStatus(t *testing.T) {
	api := &fakeSurveyAPI{statusFn: func(id string, status survey.Status) (survey.Survey, error) {
		return sv(id, status), nil
	}}
	s := New(api, nil, logger.NewNop())
	seed(s, sv("s1", survey.StatusPublished))

	if _, err := s.CloseSurvey(context.Background(), "s1"); err != nil {
		t.Fatalf("CloseSurvey() error = %v", err)
	}
	if got := s.Snapshot().Surveys[0].Status; got != survey.StatusClosed {
		t.Errorf("status = %s, want FINALIZADA", got)
	}

	if _, err := s.UpdateSurveyStatus(context.Background(), "s1", survey.StatusPaused); err != nil {
		t.Fatalf("UpdateSurveyStatus() error = %v", err)
	}
	if got := s.Snapshot().Surveys[0].Status; got != survey.StatusPaused {
		t.Errorf("status = %s, want PAUSADA", got)
	}
}

func TestDerivedFacts(t *testing.T) {
	s := New(&fakeSurveyAPI{}, nil, logger.NewNop())
	seed(s,
		svWithResponses("s1", survey.StatusPublished, 10),
		svWithResponses("s2", survey.StatusPublished, 5),
		sv("s3", survey.StatusCreated), // no count reported
		svWithResponses("s4", survey.StatusClosed, 3),
	)

	if n := s.TotalSurveys(); n != 4 {
		t.Errorf("TotalSurveys() = %d, want 4", n)
	}
	if n := s.TotalResponses(); n != 18 {
		t.Errorf("TotalResponses() = %d, want 18", n)
	}
	if n := len(s.ActiveSurveys()); n != 2 {
		t.Errorf("ActiveSurveys() = %d, want 2", n)
	}
	if n := len(s.SurveysByStatus(survey.StatusClosed)); n != 1 {
		t.Errorf("SurveysByStatus(FINALIZADA) = %d, want 1", n)
	}
}

func TestClearErrorAndCurrent(t *testing.T) {
	s := New(&fakeSurveyAPI{}, nil, logger.NewNop())
	cur := sv("s1", survey.StatusCreated)
	s.mu.Lock()
	s.current = &cur
	s.lastError = "algo falló"
	s.mu.Unlock()

	s.ClearError()
	s.ClearCurrentSurvey()

	snap := s.Snapshot()
	if snap.LastError != "" || snap.CurrentSurvey != nil {
		t.Errorf("state not cleared: %+v", snap)
	}
}

// Two overlapping refreshes share one loading flag and no sequencing: the
// call that completes last determines the final list, regardless of which
// started first.
func TestConcurrentFetchLastCompletionWins(t *testing.T) {
	first := []survey.Survey{sv("a1", survey.StatusCreated)}
	second := []survey.Survey{sv("b1", survey.StatusCreated), sv("b2", survey.StatusCreated)}

	gate := make(chan struct{})
	api := &fakeSurveyAPI{
		listResp:  [][]survey.Survey{first, second},
		listBlock: []chan struct{}{gate, nil},
	}
	s := New(api, nil, logger.NewNop())

	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		s.FetchSurveys(context.Background()) // blocks on the gate
	}()

	// Wait for the first call to reach the service before starting the
	// second, then let the second run to completion.
	for {
		api.mu.Lock()
		started := api.listCalls >= 1
		api.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}
	s.FetchSurveys(context.Background())

	if got := s.TotalSurveys(); got != 2 {
		t.Fatalf("after second fetch: %d surveys, want 2", got)
	}

	close(gate)
	<-done1

	// The first request resolved after the second; its payload wins.
	snap := s.Snapshot()
	if len(snap.Surveys) != 1 || snap.Surveys[0].ID != "a1" {
		t.Errorf("final surveys = %+v, want the late response's payload", snap.Surveys)
	}
	if snap.Loading {
		t.Error("loading still set after both calls completed")
	}
}
