// Package gemini implements the generation.ExamGenerator interface using
// Google's Gemini API.
package gemini

import "github.com/goethe-exam/exam-api/internal/domain"

// generatePromptData is the data passed to the generation prompt template.
type generatePromptData struct {
	Skill string
	Level domain.Level
}

// evaluatePromptData is the data passed to the evaluation prompt template.
type evaluatePromptData struct {
	Payload string
	Answers string
}

// errorDocument is the sentinel result returned when the model's output
// cannot be parsed as JSON. It preserves the raw response so a failed parse
// still terminates the job with diagnostic content.
type errorDocument struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
}
