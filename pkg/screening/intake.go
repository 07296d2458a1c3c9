// Package screening scores the patient-app intake questionnaire and
// summarises scan history for the progress view.
package screening

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidAnswers = errors.New("invalid intake answers")

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Subtitle    string   `json:"subtitle"`
	Options     []Option `json:"options"`
	MultiSelect bool     `json:"multiSelect,omitempty"`
}

const noneValue = "none"

var questions = []Question{
	{
		ID:       "tobacco",
		Question: "How often do you use tobacco products?",
		Subtitle: "Cigarettes, cigars, chewing tobacco, vaping",
		Options: []Option{
			{Label: "Never", Value: "none"},
			{Label: "Occasionally", Value: "occasional"},
			{Label: "Daily", Value: "daily"},
		},
	},
	{
		ID:       "alcohol",
		Question: "How would you describe your alcohol consumption?",
		Subtitle: "Heavy drinking is a known risk factor",
		Options: []Option{
			{Label: "None", Value: "none"},
			{Label: "Occasional", Value: "occasional"},
			{Label: "Heavy", Value: "heavy"},
		},
	},
	{
		ID:       "hpv",
		Question: "Have you been diagnosed with HPV?",
		Subtitle: "HPV is linked to oropharyngeal cancers",
		Options: []Option{
			{Label: "No", Value: "no"},
			{Label: "Yes", Value: "yes"},
			{Label: "Unknown", Value: "unknown"},
		},
	},
	{
		ID:       "prior_cancer",
		Question: "Any prior history of oral cancer?",
		Subtitle: "Previous cancer increases recurrence risk",
		Options: []Option{
			{Label: "No", Value: "no"},
			{Label: "Yes", Value: "yes"},
		},
	},
	{
		ID:          "symptoms",
		Question:    "Are you experiencing any of these symptoms?",
		Subtitle:    "Select all that apply",
		MultiSelect: true,
		Options: []Option{
			{Label: "Pain or tenderness", Value: "pain"},
			{Label: "Bleeding", Value: "bleeding"},
			{Label: "Numbness", Value: "numbness"},
			{Label: "Sore that won't heal", Value: "sore"},
			{Label: "None of these", Value: "none"},
		},
	},
}

// Questions returns the questionnaire in display order.
func Questions() []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]Option(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Answers maps question id to the selected option values. Single-choice
// questions carry exactly one value.
type Answers map[string][]string

// Validate checks every answer against the questionnaire. Unanswered
// questions are allowed and score zero. "none" cannot be combined with
// other symptoms.
func (a Answers) Validate() error {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		values := a[id]
		q, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown question %q: %w", id, ErrInvalidAnswers)
		}
		if !q.MultiSelect && len(values) > 1 {
			return fmt.Errorf("%s accepts one answer: %w", id, ErrInvalidAnswers)
		}
		seen := make(map[string]struct{}, len(values))
		for _, v := range values {
			if !q.allows(v) {
				return fmt.Errorf("%s: unknown option %q: %w", id, v, ErrInvalidAnswers)
			}
			if _, dup := seen[v]; dup {
				return fmt.Errorf("%s: duplicate option %q: %w", id, v, ErrInvalidAnswers)
			}
			seen[v] = struct{}{}
		}
		if _, hasNone := seen[noneValue]; hasNone && len(values) > 1 {
			return fmt.Errorf("%s: %q excludes other options: %w", id, noneValue, ErrInvalidAnswers)
		}
	}
	return nil
}

func (q Question) allows(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Wire converts answers to the analysis service's risk_factors shape:
// a string for single-choice questions and a list for multi-select ones.
func (a Answers) Wire() map[string]interface{} {
	out := make(map[string]interface{}, len(a))
	for _, q := range questions {
		values, ok := a[q.ID]
		if !ok || len(values) == 0 {
			continue
		}
		if q.MultiSelect {
			out[q.ID] = append([]string(nil), values...)
			continue
		}
		out[q.ID] = values[0]
	}
	return out
}
