// Package survey defines the survey domain model shared by the services,
// the collection store, and the CLI.
package survey

import "fmt"

// Status is the lifecycle state of a survey.
type Status string

const (
	StatusCreated   Status = "CREADA"
	StatusPublished Status = "PUBLICADA"
	StatusPaused    Status = "PAUSADA"
	StatusClosed    Status = "FINALIZADA"
)

// Statuses lists every valid lifecycle state in display order.
var Statuses = []Status{StatusCreated, StatusPublished, StatusPaused, StatusClosed}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPublished, StatusPaused, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle admits moving from s to next.
// CREADA surveys can only be published; published surveys can be paused or
// closed; paused surveys can be resumed or closed. FINALIZADA is terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusCreated:
		return next == StatusPublished
	case StatusPublished:
		return next == StatusPaused || next == StatusClosed
	case StatusPaused:
		return next == StatusPublished || next == StatusClosed
	}
	return false
}

// Survey is a named, versioned collection of ordered questions. The backend
// owns every field; mutating operations return a full replacement object.
type Survey struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Version           int        `json:"version"`
	Status            Status     `json:"status"`
	CreatedAt         string     `json:"createdAt"`
	ModifiedAt        string     `json:"modifiedAt"`
	ScheduledOpen     string     `json:"scheduledOpen,omitempty"`
	ScheduledClose    string     `json:"scheduledClose,omitempty"`
	AdminID           string     `json:"adminId"`
	PreviousVersionID string     `json:"previousVersionId,omitempty"`
	Questions         []Question `json:"questions"`
	Template          bool       `json:"template"`
	TotalResponses    *int       `json:"totalResponses,omitempty"`
	Code              string     `json:"code,omitempty"`
}

// ResponseCount returns the reported response total, treating a missing
// count as zero.
func (s Survey) ResponseCount() int {
	if s.TotalResponses == nil {
		return 0
	}
	return *s.TotalResponses
}

// CreateRequest is the payload for creating a survey.
type CreateRequest struct {
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	ScheduledOpen  string                  `json:"scheduledOpen,omitempty"`
	ScheduledClose string                  `json:"scheduledClose,omitempty"`
	Questions      []CreateQuestionRequest `json:"questions"`
	Template       bool                    `json:"template,omitempty"`
}

// Validate checks the fields the backend will reject anyway, so callers get
// a local error before the round trip.
func (r CreateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, q := range r.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// UpdateRequest carries partial survey updates. Nil fields are omitted from
// the payload and left untouched by the backend.
type UpdateRequest struct {
	Name           *string    `json:"name,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	ScheduledOpen  *string    `json:"scheduledOpen,omitempty"`
	ScheduledClose *string    `json:"scheduledClose,omitempty"`
	Questions      []Question `json:"questions,omitempty"`
	Template       *bool      `json:"template,omitempty"`
}
