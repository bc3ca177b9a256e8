package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// snippetLimit bounds how much of a failing model reply is carried in errors.
const snippetLimit = 500

// requiredTopLevelKeys is the exact field set the model must produce.
var requiredTopLevelKeys = []string{"title", "summary", "quiz", "related_topics"}

// requiredQuestionKeys is the field set of each quiz item.
var requiredQuestionKeys = []string{"question", "options", "answer", "difficulty", "explanation"}

// textModel is the narrow slice of a langchaingo LLM the synthesizer needs.
// Both llms/ollama and llms/openai satisfy it; tests inject a scripted fake.
type textModel interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// LangchainSynthesizer implements domain.QuizSynthesizer on top of a
// langchaingo text model, with a bounded retry loop and a repair pass that
// turns an unstructured reply into a structurally guaranteed QuizRecord.
type LangchainSynthesizer struct {
	model       textModel
	cfg         config.QuizConfig
	temperature float64
}

// NewLangchainSynthesizer creates a synthesizer bound to the given model.
func NewLangchainSynthesizer(model textModel, cfg config.QuizConfig, temperature float64) *LangchainSynthesizer {
	return &LangchainSynthesizer{
		model:       model,
		cfg:         cfg,
		temperature: temperature,
	}
}

// Synthesize implements domain.QuizSynthesizer. Each attempt is a fresh
// generation call followed by cleanup, parse and validation; a malformed
// reply is never re-parsed, the model is sampled again instead.
func (s *LangchainSynthesizer) Synthesize(ctx context.Context, title, content string) (*domain.QuizRecord, error) {
	l := logger.Get()

	if len(content) > s.cfg.MaxContentChars {
		content = content[:s.cfg.MaxContentChars]
	}
	prompt := s.buildPrompt(title, content)

	var lastErr error
	var lastText string
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		raw, err := s.model.Call(ctx, prompt, llms.WithTemperature(s.temperature))
		if err != nil {
			l.Warn("LLM call failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr, lastText = err, ""
			continue
		}

		cleaned := CleanResponse(raw)
		record, err := parseQuizRecord(cleaned)
		if err != nil {
			l.Warn("Failed to parse LLM response",
				zap.Int("attempt", attempt),
				zap.Error(err),
				zap.String("response_snippet", snippet(cleaned)),
			)
			lastErr, lastText = err, cleaned
			continue
		}

		repaired, err := record.ValidateAndRepair(s.cfg.MinQuestions, s.cfg.MaxQuestions)
		if err != nil {
			l.Warn("LLM response failed structural validation",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr, lastText = err, cleaned
			continue
		}
		if repaired > 0 {
			l.Warn("Repaired mismatched answers with first option",
				zap.Int("repaired", repaired),
				zap.String("title", title),
			)
		}

		l.Info("Synthesized quiz",
			zap.String("title", title),
			zap.Int("questions", len(record.Questions)),
			zap.Int("attempt", attempt),
		)
		return record, nil
	}

	return nil, domain.NewGenerationError(lastErr, snippet(lastText))
}

func (s *LangchainSynthesizer) buildPrompt(title, content string) string {
	return fmt.Sprintf(`Generate a quiz from this Wikipedia article. You MUST respond with ONLY valid JSON, no other text.

Article: %s

Content: %s

Return ONLY this exact JSON structure (no markdown, no explanation, just JSON):

{
  "title": "Quiz about %s",
  "summary": "Brief 2-3 sentence summary of the article",
  "quiz": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "Option A",
      "difficulty": "easy",
      "explanation": "Brief explanation why this is correct"
    }
  ],
  "related_topics": ["Topic 1", "Topic 2", "Topic 3"]
}

IMPORTANT RULES:
- Create %d-%d multiple-choice questions
- Each question must have exactly 4 distinct options
- Use ONLY "easy", "medium", or "hard" for difficulty
- The answer field MUST exactly match one of the options
- Include 3-5 related topics
- Make questions factual and based on the article content
- Return ONLY valid JSON, no markdown code blocks, no extra text`,
		title, content, title, s.cfg.MinQuestions, s.cfg.MaxQuestions)
}

// CleanResponse normalizes a raw model reply into parseable JSON text:
// reasoning blocks and markdown fences are stripped, then everything before
// the first '{' and after the last '}' is discarded. Running it on already
// clean JSON is a no-op.
func CleanResponse(raw string) string {
	text := strings.TrimSpace(raw)

	// Reasoning models wrap deliberation in <think> tags.
	if start := strings.Index(text, "<think>"); start != -1 {
		if end := strings.Index(text, "</think>"); end != -1 && end > start {
			text = text[:start] + text[end+len("</think>"):]
		}
	}

	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	if start := strings.Index(text, "{"); start != -1 {
		text = text[start:]
	}
	if end := strings.LastIndex(text, "}"); end != -1 {
		text = text[:end+1]
	}
	return strings.TrimSpace(text)
}

// parseQuizRecord parses cleaned text and checks key presence: all four
// top-level keys, a non-empty quiz array, and all five fields per question.
// Shape violations beyond key presence are left to ValidateAndRepair.
func parseQuizRecord(text string) (*domain.QuizRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, key := range requiredTopLevelKeys {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("missing required key %q", key)
		}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(top["quiz"], &items); err != nil {
		return nil, fmt.Errorf("quiz is not an array of objects: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("quiz must contain at least one question")
	}
	for i, item := range items {
		for _, key := range requiredQuestionKeys {
			if _, ok := item[key]; !ok {
				return nil, fmt.Errorf("question %d missing required field %q", i+1, key)
			}
		}
	}

	var record domain.QuizRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, fmt.Errorf("failed to decode quiz record: %w", err)
	}
	return &record, nil
}

func snippet(text string) string {
	if len(text) > snippetLimit {
		return text[:snippetLimit] + "..."
	}
	return text
}

var _ domain.QuizSynthesizer = (*LangchainSynthesizer)(nil)
