package handler

import (
	"strings"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article, generates a multiple-choice quiz via LLM and persists it
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generate_quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return domain.NewInvalidInputError("url is required")
	}

	resp, err := h.service.GenerateQuiz(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetHistory godoc
// @Summary List generated quizzes
// @Description Returns all generated quizzes ordered by most recent first
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizHistoryItem
// @Failure 500 {object} dto.ErrorResponse
// @Router /history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	items, err := h.service.GetHistory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GetQuiz godoc
// @Summary Get a quiz by id
// @Description Returns the full stored quiz including its questions
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return domain.NewInvalidInputError("id must be a positive integer")
	}

	resp, err := h.service.GetQuiz(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Health godoc
// @Summary Service status
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router / [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Message: "Wiki Quiz Generator API",
		Status:  "running",
	})
}
