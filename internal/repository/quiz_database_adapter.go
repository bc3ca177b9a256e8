package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// Save implements domain.QuizRepository. The id and timestamp are assigned
// by the database; both are written back into quiz on success.
func (a *QuizDatabaseAdapter) Save(ctx context.Context, quiz *domain.StoredQuiz) error {
	if quiz == nil || quiz.QuizData == nil {
		return fmt.Errorf("cannot save nil quiz")
	}

	data, err := json.Marshal(quiz.QuizData)
	if err != nil {
		return fmt.Errorf("failed to serialize quiz data: %w", err)
	}

	query := `INSERT INTO quizzes (url, title, scraped_content, full_quiz_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_generated`

	row := a.db.QueryRowxContext(ctx, query, quiz.URL, quiz.Title, quiz.ScrapedContent, string(data))
	if err := row.Scan(&quiz.ID, &quiz.DateGenerated); err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// GetByID implements domain.QuizRepository. Returns (nil, nil) when no row
// with the given id exists.
func (a *QuizDatabaseAdapter) GetByID(ctx context.Context, id int64) (*domain.StoredQuiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT id, url, title, date_generated, scraped_content, full_quiz_data
		FROM quizzes
		WHERE id = $1`

	err := a.db.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return toDomainStoredQuiz(&modelQuiz)
}

// ListHistory implements domain.QuizRepository. Most recent first, id breaks
// ties between rows created in the same instant.
func (a *QuizDatabaseAdapter) ListHistory(ctx context.Context) ([]*domain.QuizSummary, error) {
	var modelSummaries []models.QuizSummary
	query := `SELECT id, url, title, date_generated
		FROM quizzes
		ORDER BY date_generated DESC, id DESC`

	if err := a.db.SelectContext(ctx, &modelSummaries, query); err != nil {
		return nil, fmt.Errorf("failed to list quiz history: %w", err)
	}

	summaries := make([]*domain.QuizSummary, 0, len(modelSummaries))
	for _, m := range modelSummaries {
		summaries = append(summaries, &domain.QuizSummary{
			ID:            m.ID,
			URL:           m.URL,
			Title:         m.Title,
			DateGenerated: m.DateGenerated,
		})
	}
	return summaries, nil
}

func toDomainStoredQuiz(m *models.Quiz) (*domain.StoredQuiz, error) {
	var record domain.QuizRecord
	if err := json.Unmarshal([]byte(m.FullQuizData), &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize quiz data for ID %d: %w", m.ID, err)
	}
	return &domain.StoredQuiz{
		ID:             m.ID,
		URL:            m.URL,
		Title:          m.Title,
		DateGenerated:  m.DateGenerated,
		ScrapedContent: m.ScrapedContent,
		QuizData:       &record,
	}, nil
}

var _ domain.QuizRepository = (*QuizDatabaseAdapter)(nil)
