package survey

import (
	"encoding/json"
	"fmt"
)

// QuestionType discriminates the shape of a question's options payload.
type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	YesNo          QuestionType = "YES_NO"
	Scale          QuestionType = "SCALE"
	Text           QuestionType = "TEXT"
	Number         QuestionType = "NUMBER"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, YesNo, Scale, Text, Number:
		return true
	}
	return false
}

// ScaleOptions bounds a SCALE question. Labels map endpoint values to
// display strings.
type ScaleOptions struct {
	Min    int               `json:"min"`
	Max    int               `json:"max"`
	Step   int               `json:"step,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// NumberOptions bounds a NUMBER question.
type NumberOptions struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Options is the tagged union of per-type question configuration. Exactly
// one member is set, matching the owning question's type; YES_NO and TEXT
// questions carry no options at all.
type Options struct {
	Choices []string
	Scale   *ScaleOptions
	Number  *NumberOptions
}

// ChoiceOptions builds options for a choice question.
func ChoiceOptions(choices ...string) Options {
	return Options{Choices: choices}
}

// IsZero reports whether no member of the union is set.
func (o Options) IsZero() bool {
	return o.Choices == nil && o.Scale == nil && o.Number == nil
}

// validateFor checks that the union member present matches the declared
// question type.
func (o Options) validateFor(t QuestionType) error {
	switch t {
	case SingleChoice, MultipleChoice:
		if len(o.Choices) < 2 {
			return fmt.Errorf("%s question needs at least 2 choices", t)
		}
		if o.Scale != nil || o.Number != nil {
			return fmt.Errorf("%s question admits only choice options", t)
		}
	case Scale:
		if o.Scale == nil {
			return fmt.Errorf("SCALE question needs scale bounds")
		}
		if o.Scale.Min >= o.Scale.Max {
			return fmt.Errorf("scale min %d must be below max %d", o.Scale.Min, o.Scale.Max)
		}
		if o.Scale.Step < 0 {
			return fmt.Errorf("scale step must not be negative")
		}
		if o.Choices != nil || o.Number != nil {
			return fmt.Errorf("SCALE question admits only scale options")
		}
	case Number:
		if o.Number == nil {
			return fmt.Errorf("NUMBER question needs numeric bounds")
		}
		if o.Number.Min >= o.Number.Max {
			return fmt.Errorf("number min %v must be below max %v", o.Number.Min, o.Number.Max)
		}
		if o.Choices != nil || o.Scale != nil {
			return fmt.Errorf("NUMBER question admits only numeric bounds")
		}
	case YesNo, Text:
		if !o.IsZero() {
			return fmt.Errorf("%s question takes no options", t)
		}
	}
	return nil
}

// MarshalJSON writes the active union member in the backend's wire shape:
// a plain string array for choices, an object for scale and numeric
// bounds, null when empty.
func (o Options) MarshalJSON() ([]byte, error) {
	switch {
	case o.Choices != nil:
		return json.Marshal(o.Choices)
	case o.Scale != nil:
		return json.Marshal(o.Scale)
	case o.Number != nil:
		return json.Marshal(o.Number)
	}
	return []byte("null"), nil
}

// UnmarshalJSON sniffs the payload shape. Arrays become choices; objects
// with a fractional-capable bounds pair become numeric bounds only when no
// scale markers are present, otherwise scale bounds. The owning question's
// Normalize call resolves the ambiguity against the declared type.
func (o *Options) UnmarshalJSON(data []byte) error {
	*o = Options{}
	trimmed := string(data)
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	switch data[0] {
	case '[':
		return json.Unmarshal(data, &o.Choices)
	case '{':
		var sc ScaleOptions
		if err := json.Unmarshal(data, &sc); err == nil {
			o.Scale = &sc
			return nil
		}
		// Fractional bounds do not fit the integer scale shape.
		var nm NumberOptions
		if err := json.Unmarshal(data, &nm); err != nil {
			return fmt.Errorf("options object: %w", err)
		}
		o.Number = &nm
		return nil
	}
	return fmt.Errorf("options must be an array, an object, or null")
}

// Question is one ordered entry of a survey.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  Options      `json:"options"`
	Order    int          `json:"order"`
}

// Normalize reconciles the sniffed options shape with the declared type and
// validates the pairing. NUMBER questions arrive as a bare bounds object
// which the sniffer reads as scale bounds; move it over here.
func (q *Question) Normalize() error {
	if !q.Type.Valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	if q.Type == Number && q.Options.Scale != nil && q.Options.Number == nil {
		q.Options.Number = &NumberOptions{
			Min: float64(q.Options.Scale.Min),
			Max: float64(q.Options.Scale.Max),
		}
		q.Options.Scale = nil
	}
	return q.Options.validateFor(q.Type)
}

// CreateQuestionRequest is the payload for adding a question to a survey.
type CreateQuestionRequest struct {
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  Options      `json:"options"`
	Order    int          `json:"order"`
}

// Validate checks the request shape before submission.
func (r CreateQuestionRequest) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown question type %q", r.Type)
	}
	return r.Options.validateFor(r.Type)
}
