// Package survey shapes requests against the survey endpoints.
package survey

import (
	"context"
	"fmt"
	"net/http"

	"github.com/encuestas-platform/client-layer/internal/domain/response"
	"github.com/encuestas-platform/client-layer/internal/domain/survey"
	"github.com/encuestas-platform/client-layer/internal/httputil"
)

const basePath = "/api/surveys"

// Service maps survey operations one-to-one onto HTTP calls. It holds no
// state and applies no retries; failures propagate unchanged.
type Service struct {
	client *httputil.Client
}

// New constructs a survey service over the authenticated client.
func New(client *httputil.Client) *Service {
	return &Service{client: client}
}

func (s *Service) getSurvey(ctx context.Context, path string) (survey.Survey, error) {
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

func decodeSurvey(resp *http.Response) (survey.Survey, error) {
	var out survey.Survey
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return survey.Survey{}, err
	}
	return out, normalize(&out)
}

// normalize reconciles every question's options payload with its declared
// type after decoding.
func normalize(sv *survey.Survey) error {
	for i := range sv.Questions {
		if err := sv.Questions[i].Normalize(); err != nil {
			return fmt.Errorf("survey %s: %w", sv.ID, err)
		}
	}
	return nil
}

// List fetches the authenticated user's surveys.
func (s *Service) List(ctx context.Context) ([]survey.Survey, error) {
	resp, err := s.client.Get(ctx, basePath)
	if err != nil {
		return nil, err
	}
	var out []survey.Survey
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := normalize(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get fetches one survey by id for administration.
func (s *Service) Get(ctx context.Context, id string) (survey.Survey, error) {
	return s.getSurvey(ctx, basePath+"/"+id)
}

// GetForResponse fetches the public view of a survey by id.
func (s *Service) GetForResponse(ctx context.Context, id string) (survey.Survey, error) {
	return s.getSurvey(ctx, basePath+"/"+id+"/view")
}

// GetByCode fetches a survey through its public code.
func (s *Service) GetByCode(ctx context.Context, code string) (survey.Survey, error) {
	return s.getSurvey(ctx, basePath+"/public/"+code)
}

// Create posts a new survey.
func (s *Service) Create(ctx context.Context, req survey.CreateRequest) (survey.Survey, error) {
	if err := req.Validate(); err != nil {
		return survey.Survey{}, err
	}
	resp, err := s.client.Post(ctx, basePath, req)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

// Update puts partial survey data; the backend replies with the full
// replacement object.
func (s *Service) Update(ctx context.Context, id string, req survey.UpdateRequest) (survey.Survey, error) {
	resp, err := s.client.Put(ctx, basePath+"/"+id, req)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

// Publish opens a survey for public responses.
func (s *Service) Publish(ctx context.Context, id string) (survey.Survey, error) {
	resp, err := s.client.Post(ctx, basePath+"/"+id+"/publish", nil)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

// Close stops a survey from receiving responses.
func (s *Service) Close(ctx context.Context, id string) (survey.Survey, error) {
	resp, err := s.client.Post(ctx, basePath+"/"+id+"/close", nil)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

// Delete removes a survey permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	resp, err := s.client.Delete(ctx, basePath+"/"+id)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}

// UpdateStatus performs a generic status transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, status survey.Status) (survey.Survey, error) {
	if !status.Valid() {
		return survey.Survey{}, fmt.Errorf("unknown survey status %q", status)
	}
	body := map[string]survey.Status{"status": status}
	resp, err := s.client.Patch(ctx, basePath+"/"+id+"/status", body)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}

// Responses fetches every submission recorded for a survey.
func (s *Service) Responses(ctx context.Context, id string) ([]response.SurveyResponse, error) {
	resp, err := s.client.Get(ctx, basePath+"/"+id+"/responses")
	if err != nil {
		return nil, err
	}
	var out []response.SurveyResponse
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Duplicate clones an existing survey into a new CREADA one.
func (s *Service) Duplicate(ctx context.Context, id string) (survey.Survey, error) {
	resp, err := s.client.Post(ctx, basePath+"/"+id+"/duplicate", nil)
	if err != nil {
		return survey.Survey{}, err
	}
	return decodeSurvey(resp)
}
