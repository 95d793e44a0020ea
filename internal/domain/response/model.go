// Package response defines the survey response domain model.
package response

import "sort"

// QuestionAnswer pairs a question with a respondent's answer. The answer is
// opaque to the client: its shape depends on the question type and only the
// backend interprets it.
type QuestionAnswer struct {
	QuestionID string      `json:"questionId"`
	Answer     interface{} `json:"answer"`
}

// SurveyResponse is one respondent's complete submission. Immutable from
// the client's perspective once created.
type SurveyResponse struct {
	ID          string           `json:"id"`
	SurveyID    string           `json:"surveyId"`
	Answers     []QuestionAnswer `json:"answers"`
	SubmittedAt string           `json:"submittedAt"`
	IPAddress   string           `json:"ipAddress,omitempty"`
}

// SubmitRequest is the public submission payload.
type SubmitRequest struct {
	SurveyID string           `json:"surveyId"`
	Answers  []QuestionAnswer `json:"answers"`
}

// NewSubmitRequest formats an answers map into the wire payload. Entries
// are ordered by question id so the payload is deterministic.
func NewSubmitRequest(surveyID string, answers map[string]interface{}) SubmitRequest {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	formatted := make([]QuestionAnswer, 0, len(ids))
	for _, id := range ids {
		formatted = append(formatted, QuestionAnswer{QuestionID: id, Answer: answers[id]})
	}
	return SubmitRequest{SurveyID: surveyID, Answers: formatted}
}

// Stats aggregates submission metrics for one survey.
type Stats struct {
	TotalResponses        int      `json:"totalResponses"`
	AverageCompletionTime *float64 `json:"averageCompletionTime,omitempty"`
	CompletionRate        float64  `json:"completionRate"`
}
