package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"text/template"

	"google.golang.org/genai"

	"github.com/goethe-exam/exam-api/internal/config"
	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/generation"
)

// GeminiExamGenerator implements the generation.ExamGenerator interface
// using Google's Gemini API to generate and grade CEFR exam content.
type GeminiExamGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// generateTemplate and evaluateTemplate are the parsed prompt templates
	generateTemplate *template.Template
	evaluateTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// embeddedJSON matches the outermost brace-delimited fragment of a response,
// the fallback when the model wraps its JSON in prose or markdown fences.
var embeddedJSON = regexp.MustCompile(`(?s)\{.*\}`)

// NewGeminiExamGenerator creates a new GeminiExamGenerator with the provided
// dependencies. Returns an error if the configuration is invalid or the
// client cannot be created.
func NewGeminiExamGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*GeminiExamGenerator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	generateTemplate, err := template.New("generate").Parse(generatePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse generation prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	evaluateTemplate, err := template.New("evaluate").Parse(evaluatePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse evaluation prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiExamGenerator{
		logger:           log.With(slog.String("component", "gemini_generator")),
		config:           cfg,
		generateTemplate: generateTemplate,
		evaluateTemplate: evaluateTemplate,
		client:           client,
		model:            cfg.ModelName,
	}, nil
}

// Ensure GeminiExamGenerator implements generation.ExamGenerator
var _ generation.ExamGenerator = (*GeminiExamGenerator)(nil)

// GenerateExam implements generation.ExamGenerator.GenerateExam
func (g *GeminiExamGenerator) GenerateExam(ctx context.Context, category domain.Category, level domain.Level) (json.RawMessage, error) {
	skill, ok := skillNames[category.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a generation category", domain.ErrInvalidCategory, category)
	}

	if !level.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidLevel, level)
	}

	var promptBuffer bytes.Buffer
	err := g.generateTemplate.Execute(&promptBuffer, generatePromptData{
		Skill: skill,
		Level: level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute generation prompt template: %w", err)
	}

	g.logger.InfoContext(ctx, "generating exam content",
		slog.String("category", category.String()),
		slog.String("level", level.String()))

	return g.callModel(ctx, promptBuffer.String())
}

// EvaluateWriting implements generation.ExamGenerator.EvaluateWriting
func (g *GeminiExamGenerator) EvaluateWriting(ctx context.Context, payload, answers json.RawMessage) (json.RawMessage, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: exam payload", domain.ErrEmptyContent)
	}

	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: participant answers", domain.ErrEmptyContent)
	}

	var promptBuffer bytes.Buffer
	err := g.evaluateTemplate.Execute(&promptBuffer, evaluatePromptData{
		Payload: string(payload),
		Answers: string(answers),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute evaluation prompt template: %w", err)
	}

	g.logger.InfoContext(ctx, "evaluating writing submission",
		slog.Int("payload_length", len(payload)),
		slog.Int("answers_length", len(answers)))

	return g.callModel(ctx, promptBuffer.String())
}

// callModel makes a single call to the Gemini API and parses the response.
// There is no retry: a failed or timed-out call fails the job.
func (g *GeminiExamGenerator) callModel(ctx context.Context, prompt string) (json.RawMessage, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.logger.ErrorContext(ctx, "Gemini API call exceeded time limit", "error", err)
			return nil, fmt.Errorf("%w: %v", generation.ErrTimeout, err)
		}
		g.logger.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: generation stopped by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	g.logger.DebugContext(ctx, "Gemini API call successful",
		slog.Int("response_length", len(text)))

	return g.parseDocument(ctx, text), nil
}

// parseDocument turns the model's text output into a JSON document.
// If the text is not valid JSON it scans for an embedded brace-delimited
// fragment; if that also fails it returns a sentinel error document instead
// of an error, so the job still reaches a terminal state with the raw
// response preserved for diagnosis.
func (g *GeminiExamGenerator) parseDocument(ctx context.Context, text string) json.RawMessage {
	raw := []byte(text)
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}

	g.logger.WarnContext(ctx, "model response is not valid JSON, scanning for embedded fragment",
		slog.Int("response_length", len(text)))

	if fragment := embeddedJSON.Find(raw); fragment != nil && json.Valid(fragment) {
		return json.RawMessage(fragment)
	}

	g.logger.ErrorContext(ctx, "could not parse model response as JSON, returning error document")

	doc, err := json.Marshal(errorDocument{
		Error:       "model response is not valid JSON",
		RawResponse: text,
	})
	if err != nil {
		// Marshal of a two-string struct cannot realistically fail; guard anyway.
		return json.RawMessage(`{"error":"model response is not valid JSON"}`)
	}
	return json.RawMessage(doc)
}
