package response

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/encuestas-platform/client-layer/internal/domain/response"
	"github.com/encuestas-platform/client-layer/internal/httputil"
	"github.com/encuestas-platform/client-layer/pkg/testutil"
)

func authedClient(url string) *httputil.Client {
	return httputil.NewClient(httputil.Config{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Tokens:  httputil.TokenFunc(func() string { return "admin-token" }),
	})
}

func newService(t *testing.T, routes map[string]testutil.Route) (*Service, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t, routes)
	c := authedClient(backend.URL())
	return New(c, c), backend
}

func TestBySurveyAndGet(t *testing.T) {
	fixtures := []domain.SurveyResponse{
		{ID: "r1", SurveyID: "s1", SubmittedAt: "2026-02-01T10:00:00Z"},
		{ID: "r2", SurveyID: "s1", SubmittedAt: "2026-02-01T11:00:00Z"},
	}
	svc, backend := newService(t, map[string]testutil.Route{
		"GET /api/responses/survey/s1": {Status: http.StatusOK, Payload: fixtures},
		"GET /api/responses/r1":        {Status: http.StatusOK, Payload: fixtures[0]},
	})

	list, err := svc.BySurvey(context.Background(), "s1")
	if err != nil {
		t.Fatalf("BySurvey() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("BySurvey() = %d responses, want 2", len(list))
	}

	one, err := svc.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if one.ID != "r1" {
		t.Errorf("Get() id = %s, want r1", one.ID)
	}

	want := []string{"GET /api/responses/survey/s1", "GET /api/responses/r1"}
	reqs := backend.Requests()
	for i := range want {
		if reqs[i] != want[i] {
			t.Errorf("request %d = %s, want %s", i, reqs[i], want[i])
		}
	}
}

func TestStats(t *testing.T) {
	avg := 42.5
	svc, _ := newService(t, map[string]testutil.Route{
		"GET /api/responses/survey/s1/stats": {Status: http.StatusOK, Payload: domain.Stats{
			TotalResponses:        18,
			AverageCompletionTime: &avg,
			CompletionRate:        0.9,
		}},
	})

	stats, err := svc.Stats(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalResponses != 18 || stats.CompletionRate != 0.9 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.AverageCompletionTime == nil || *stats.AverageCompletionTime != 42.5 {
		t.Errorf("AverageCompletionTime = %v", stats.AverageCompletionTime)
	}
}

func TestExportReturnsRawBody(t *testing.T) {
	csv := "id,surveyId,submittedAt\nr1,s1,2026-02-01T10:00:00Z\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, csv)
	}))
	defer server.Close()

	svc := New(authedClient(server.URL), authedClient(server.URL))
	got, err := svc.Export(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(got) != csv {
		t.Errorf("Export() = %q", got)
	}
}

func TestAnalysisStaysRawJSON(t *testing.T) {
	payload := `[{"questionId":"q1","type":"SCALE","average":3.7}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, payload)
	}))
	defer server.Close()

	svc := New(authedClient(server.URL), authedClient(server.URL))
	got, err := svc.Analysis(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if string(got) != payload {
		t.Errorf("Analysis() = %q, want the body untouched", got)
	}
}

func TestSubmitUsesPublicClient(t *testing.T) {
	var gotAuth string
	var gotBody domain.SubmitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost || r.URL.Path != "/api/responses/submit" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("unmarshal submit body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	public := httputil.NewClient(httputil.Config{BaseURL: server.URL, Timeout: 2 * time.Second})
	svc := New(authedClient(server.URL), public)

	answers := map[string]interface{}{"q2": "texto libre", "q1": []string{"Internet"}}
	if err := svc.Submit(context.Background(), "s1", answers); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if gotAuth != "" {
		t.Errorf("public submission carried Authorization %q", gotAuth)
	}
	if gotBody.SurveyID != "s1" || len(gotBody.Answers) != 2 {
		t.Fatalf("submit payload = %+v", gotBody)
	}
	// Answers arrive sorted by question id.
	if gotBody.Answers[0].QuestionID != "q1" || gotBody.Answers[1].QuestionID != "q2" {
		t.Errorf("answer order = %s, %s", gotBody.Answers[0].QuestionID, gotBody.Answers[1].QuestionID)
	}
}

func TestDeletePropagatesAPIError(t *testing.T) {
	svc, _ := newService(t, map[string]testutil.Route{
		"DELETE /api/responses/r9": {Status: http.StatusForbidden, Payload: map[string]string{"message": "Operación no permitida"}},
	})

	err := svc.Delete(context.Background(), "r9")
	if got := httputil.ErrorMessage(err, "fallback"); got != "Operación no permitida" {
		t.Errorf("ErrorMessage() = %q", got)
	}
}
