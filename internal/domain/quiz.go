package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Difficulty levels a question may carry.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// OptionsPerQuestion is the fixed number of answer options per question.
const OptionsPerQuestion = 4

// QuizQuestion is a single multiple-choice question. Immutable once created.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// QuizRecord is the validated output of the synthesizer. The JSON tags match
// the field set the model is instructed to produce.
type QuizRecord struct {
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// StoredQuiz is a persisted generation result. Append-only: never updated.
type StoredQuiz struct {
	ID             int64
	URL            string
	Title          string
	DateGenerated  time.Time
	ScrapedContent string
	QuizData       *QuizRecord
}

// QuizSummary is the history-list projection of a StoredQuiz.
type QuizSummary struct {
	ID            int64
	URL           string
	Title         string
	DateGenerated time.Time
}

// Article is the extractor's output: a title plus bounded plain-text prose.
type Article struct {
	Title   string
	Content string
}

// ArticleExtractor reduces a Wikipedia page to prompt-ready text.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (*Article, error)
}

// QuizSynthesizer turns extracted article text into a validated QuizRecord.
type QuizSynthesizer interface {
	Synthesize(ctx context.Context, title, content string) (*QuizRecord, error)
}

// QuizRepository persists quizzes. GetByID returns (nil, nil) when no row
// exists so callers can distinguish absence from failure.
type QuizRepository interface {
	Save(ctx context.Context, quiz *StoredQuiz) error
	GetByID(ctx context.Context, id int64) (*StoredQuiz, error)
	ListHistory(ctx context.Context) ([]*QuizSummary, error)
}

// IsValidDifficulty reports whether d is one of the allowed levels.
func IsValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidateAndRepair checks the structural invariants of a freshly parsed
// record and applies the documented lenient repair: an answer that is not
// verbatim one of its question's options is replaced with the first option.
// Difficulty values are normalized to lowercase before checking. It returns
// the number of repaired answers; any other violation is an error.
func (r *QuizRecord) ValidateAndRepair(minQuestions, maxQuestions int) (int, error) {
	if len(r.Questions) == 0 {
		return 0, fmt.Errorf("quiz must contain at least one question")
	}
	if len(r.Questions) < minQuestions || len(r.Questions) > maxQuestions {
		return 0, fmt.Errorf("quiz has %d questions, want between %d and %d",
			len(r.Questions), minQuestions, maxQuestions)
	}

	repaired := 0
	for i := range r.Questions {
		q := &r.Questions[i]
		if len(q.Options) != OptionsPerQuestion {
			return repaired, fmt.Errorf("question %d has %d options, want exactly %d",
				i+1, len(q.Options), OptionsPerQuestion)
		}
		q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
		if !IsValidDifficulty(q.Difficulty) {
			return repaired, fmt.Errorf("question %d has invalid difficulty %q", i+1, q.Difficulty)
		}
		if !contains(q.Options, q.Answer) {
			q.Answer = q.Options[0]
			repaired++
		}
	}
	return repaired, nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
