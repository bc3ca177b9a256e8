package dto

import (
	"time"

	"wiki-quiz/internal/domain"
)

// GenerateQuizRequest is the body of POST /generate_quiz
type GenerateQuizRequest struct {
	URL string `json:"url"`
}

// QuizResponse is the full quiz payload returned by generation and lookup
type QuizResponse struct {
	ID            int64              `json:"id"`
	URL           string             `json:"url"`
	Title         string             `json:"title"`
	DateGenerated time.Time          `json:"date_generated"`
	QuizData      *domain.QuizRecord `json:"quiz_data"`
}

// QuizHistoryItem is a single row of GET /history
type QuizHistoryItem struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
}

// HealthResponse is the GET / status payload
type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ErrorResponse is kept for swag annotations; actual error bodies are
// produced by the centralized error handler middleware.
type ErrorResponse struct {
	Error string `json:"error"`
}
