// Package auth shapes requests against the authentication endpoints.
package auth

import (
	"context"

	"github.com/encuestas-platform/client-layer/internal/domain/auth"
	"github.com/encuestas-platform/client-layer/internal/httputil"
)

// Service maps authentication operations one-to-one onto HTTP calls. It
// holds no state and applies no retries; failures propagate unchanged.
type Service struct {
	client *httputil.Client
}

// New constructs an auth service over the authenticated client.
func New(client *httputil.Client) *Service {
	return &Service{client: client}
}

// Login authenticates with username and password.
func (s *Service) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	resp, err := s.client.Post(ctx, "/api/auth/login", req)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	var out auth.LoginResponse
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return auth.LoginResponse{}, err
	}
	return out, nil
}

// CurrentUser fetches the authenticated user's snapshot.
func (s *Service) CurrentUser(ctx context.Context) (auth.User, error) {
	resp, err := s.client.Get(ctx, "/api/auth/me")
	if err != nil {
		return auth.User{}, err
	}
	var out auth.User
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return auth.User{}, err
	}
	return out, nil
}

// Logout terminates the session server-side.
func (s *Service) Logout(ctx context.Context) error {
	resp, err := s.client.Post(ctx, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}
