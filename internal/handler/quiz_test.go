package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/handler"
	"wiki-quiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockQuizService struct {
	GenerateQuizFunc func(ctx context.Context, url string) (*dto.QuizResponse, error)
	GetHistoryFunc   func(ctx context.Context) ([]*dto.QuizHistoryItem, error)
	GetQuizFunc      func(ctx context.Context, id int64) (*dto.QuizResponse, error)
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error) {
	if m.GenerateQuizFunc != nil {
		return m.GenerateQuizFunc(ctx, url)
	}
	panic("MockQuizService.GenerateQuizFunc not implemented")
}
func (m *MockQuizService) GetHistory(ctx context.Context) ([]*dto.QuizHistoryItem, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx)
	}
	panic("MockQuizService.GetHistoryFunc not implemented")
}
func (m *MockQuizService) GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, id)
	}
	panic("MockQuizService.GetQuizFunc not implemented")
}

func newTestApp(svc *MockQuizService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := handler.NewQuizHandler(svc)
	app.Get("/", h.Health)
	app.Post("/generate_quiz", h.GenerateQuiz)
	app.Get("/history", h.GetHistory)
	app.Get("/quiz/:id", h.GetQuiz)
	return app
}

func sampleResponse() *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:            42,
		URL:           "https://en.wikipedia.org/wiki/Marie_Curie",
		Title:         "Marie Curie",
		DateGenerated: time.Now().UTC().Truncate(time.Second),
		QuizData: &domain.QuizRecord{
			Title:   "Quiz about Marie Curie",
			Summary: "A physicist and chemist.",
			Questions: []domain.QuizQuestion{
				{
					Question:    "What did Marie Curie discover?",
					Options:     []string{"Polonium", "Oxygen", "Helium", "Carbon"},
					Answer:      "Polonium",
					Difficulty:  "easy",
					Explanation: "She discovered polonium and radium.",
				},
			},
			RelatedTopics: []string{"Radioactivity"},
		},
	}
}

func TestGenerateQuizCreated(t *testing.T) {
	svc := &MockQuizService{
		GenerateQuizFunc: func(_ context.Context, url string) (*dto.QuizResponse, error) {
			assert.Equal(t, "https://en.wikipedia.org/wiki/Marie_Curie", url)
			return sampleResponse(), nil
		},
	}
	app := newTestApp(svc)

	body, _ := json.Marshal(dto.GenerateQuizRequest{URL: "https://en.wikipedia.org/wiki/Marie_Curie"})
	req := httptest.NewRequest("POST", "/generate_quiz", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got dto.QuizResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(42), got.ID)
	require.NotNil(t, got.QuizData)
	assert.Len(t, got.QuizData.Questions, 1)
	assert.Equal(t, "Polonium", got.QuizData.Questions[0].Answer)
}

func TestGenerateQuizMissingURL(t *testing.T) {
	app := newTestApp(&MockQuizService{})

	req := httptest.NewRequest("POST", "/generate_quiz", bytes.NewReader([]byte(`{"url": ""}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateQuizInvalidBody(t *testing.T) {
	app := newTestApp(&MockQuizService{})

	req := httptest.NewRequest("POST", "/generate_quiz", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateQuizErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient content", domain.NewInsufficientContentError(120), fiber.StatusBadRequest, "INSUFFICIENT_CONTENT"},
		{"extraction failed", domain.NewExtractionError("Could not find article content"), fiber.StatusBadRequest, "EXTRACTION_FAILED"},
		{"fetch failed", domain.NewFetchError("u", errors.New("timeout")), fiber.StatusBadRequest, "FETCH_FAILED"},
		{"generation failed", domain.NewGenerationError(errors.New("bad json"), "{x"), fiber.StatusBadRequest, "GENERATION_FAILED"},
		{"persistence failed", domain.NewPersistenceError("write failed", errors.New("io")), fiber.StatusInternalServerError, "PERSISTENCE_FAILED"},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockQuizService{
				GenerateQuizFunc: func(context.Context, string) (*dto.QuizResponse, error) {
					return nil, tc.err
				},
			}
			app := newTestApp(svc)

			req := httptest.NewRequest("POST", "/generate_quiz",
				bytes.NewReader([]byte(`{"url":"https://en.wikipedia.org/wiki/X"}`)))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var body middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

func TestGetHistory(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &MockQuizService{
		GetHistoryFunc: func(context.Context) ([]*dto.QuizHistoryItem, error) {
			return []*dto.QuizHistoryItem{
				{ID: 2, URL: "u2", Title: "Second", DateGenerated: now},
				{ID: 1, URL: "u1", Title: "First", DateGenerated: now.Add(-time.Hour)},
			}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/history", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []dto.QuizHistoryItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestGetHistoryEmpty(t *testing.T) {
	svc := &MockQuizService{
		GetHistoryFunc: func(context.Context) ([]*dto.QuizHistoryItem, error) {
			return []*dto.QuizHistoryItem{}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/history", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []dto.QuizHistoryItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Empty(t, items)
}

func TestGetQuizByID(t *testing.T) {
	svc := &MockQuizService{
		GetQuizFunc: func(_ context.Context, id int64) (*dto.QuizResponse, error) {
			assert.Equal(t, int64(42), id)
			return sampleResponse(), nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/quiz/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetQuizNotFound(t *testing.T) {
	svc := &MockQuizService{
		GetQuizFunc: func(_ context.Context, id int64) (*dto.QuizResponse, error) {
			return nil, domain.NewQuizNotFoundError(id)
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/quiz/9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetQuizInvalidID(t *testing.T) {
	app := newTestApp(&MockQuizService{})

	for _, path := range []string{"/quiz/abc", "/quiz/0", "/quiz/-1"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err, path)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&MockQuizService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body.Status)
}
