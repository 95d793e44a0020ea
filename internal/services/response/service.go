// Package response shapes requests against the response endpoints.
package response

import (
	"context"

	"github.com/encuestas-platform/client-layer/internal/domain/response"
	"github.com/encuestas-platform/client-layer/internal/httputil"
)

const basePath = "/api/responses"

// Service maps response operations one-to-one onto HTTP calls. Submission
// goes out over the public client so respondents never need a credential;
// everything else uses the authenticated client.
type Service struct {
	client *httputil.Client
	public *httputil.Client
}

// New constructs a response service. public may equal client when
// anonymous submission is not needed.
func New(client, public *httputil.Client) *Service {
	return &Service{client: client, public: public}
}

// BySurvey fetches every response recorded for a survey.
func (s *Service) BySurvey(ctx context.Context, surveyID string) ([]response.SurveyResponse, error) {
	resp, err := s.client.Get(ctx, basePath+"/survey/"+surveyID)
	if err != nil {
		return nil, err
	}
	var out []response.SurveyResponse
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one response by id.
func (s *Service) Get(ctx context.Context, id string) (response.SurveyResponse, error) {
	resp, err := s.client.Get(ctx, basePath+"/"+id)
	if err != nil {
		return response.SurveyResponse{}, err
	}
	var out response.SurveyResponse
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return response.SurveyResponse{}, err
	}
	return out, nil
}

// Delete removes one response.
func (s *Service) Delete(ctx context.Context, id string) error {
	resp, err := s.client.Delete(ctx, basePath+"/"+id)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// Stats fetches aggregated submission metrics for a survey.
func (s *Service) Stats(ctx context.Context, surveyID string) (response.Stats, error) {
	resp, err := s.client.Get(ctx, basePath+"/survey/"+surveyID+"/stats")
	if err != nil {
		return response.Stats{}, err
	}
	var out response.Stats
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return response.Stats{}, err
	}
	return out, nil
}

// Export downloads a survey's responses as CSV.
func (s *Service) Export(ctx context.Context, surveyID string) ([]byte, error) {
	resp, err := s.client.Get(ctx, basePath+"/survey/"+surveyID+"/export")
	if err != nil {
		return nil, err
	}
	return httputil.ReadBody(resp)
}

// Analysis fetches the per-question aggregate analysis for a survey. The
// payload shape varies by question type, so it stays raw JSON.
func (s *Service) Analysis(ctx context.Context, surveyID string) ([]byte, error) {
	resp, err := s.client.Get(ctx, basePath+"/survey/"+surveyID+"/analysis")
	if err != nil {
		return nil, err
	}
	return httputil.ReadBody(resp)
}

// Submit sends a respondent's answers through the public endpoint.
func (s *Service) Submit(ctx context.Context, surveyID string, answers map[string]interface{}) error {
	payload := response.NewSubmitRequest(surveyID, answers)
	resp, err := s.public.Post(ctx, basePath+"/submit", payload)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}
