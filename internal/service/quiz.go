package service

import (
	"context"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
)

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error)
	GetHistory(ctx context.Context) ([]*dto.QuizHistoryItem, error)
	GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error)
}

// quizService implements QuizService
type quizService struct {
	extractor   domain.ArticleExtractor
	synthesizer domain.QuizSynthesizer
	repo        domain.QuizRepository
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	extractor domain.ArticleExtractor,
	synthesizer domain.QuizSynthesizer,
	repo domain.QuizRepository,
) QuizService {
	return &quizService{
		extractor:   extractor,
		synthesizer: synthesizer,
		repo:        repo,
	}
}

// GenerateQuiz runs the extract -> synthesize -> persist pipeline for one
// request. The stages are strictly sequential; a failure at any stage
// surfaces as a domain error and nothing is persisted.
func (s *quizService) GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error) {
	article, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}

	record, err := s.synthesizer.Synthesize(ctx, article.Title, article.Content)
	if err != nil {
		return nil, err
	}

	stored := &domain.StoredQuiz{
		URL:            url,
		Title:          article.Title,
		ScrapedContent: article.Content,
		QuizData:       record,
	}
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, domain.NewPersistenceError("Failed to save quiz", err)
	}

	logger.Get().Info("Generated quiz",
		zap.Int64("id", stored.ID),
		zap.String("url", url),
		zap.String("title", stored.Title),
		zap.Int("questions", len(record.Questions)),
	)

	return toQuizResponse(stored), nil
}

// GetHistory implements QuizService
func (s *quizService) GetHistory(ctx context.Context) ([]*dto.QuizHistoryItem, error) {
	summaries, err := s.repo.ListHistory(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to list quiz history", err)
	}

	items := make([]*dto.QuizHistoryItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, &dto.QuizHistoryItem{
			ID:            summary.ID,
			URL:           summary.URL,
			Title:         summary.Title,
			DateGenerated: summary.DateGenerated,
		})
	}
	return items, nil
}

// GetQuiz implements QuizService
func (s *quizService) GetQuiz(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load quiz", err)
	}
	if stored == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return toQuizResponse(stored), nil
}

func toQuizResponse(quiz *domain.StoredQuiz) *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:            quiz.ID,
		URL:           quiz.URL,
		Title:         quiz.Title,
		DateGenerated: quiz.DateGenerated,
		QuizData:      quiz.QuizData,
	}
}
