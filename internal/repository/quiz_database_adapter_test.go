package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"wiki-quiz/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func sampleRecord() *domain.QuizRecord {
	return &domain.QuizRecord{
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
		RelatedTopics: []string{"Radioactivity", "Nobel Prize"},
	}
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	record := sampleRecord()
	data, err := json.Marshal(record)
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO quizzes (url, title, scraped_content, full_quiz_data)`)).
		WithArgs("https://en.wikipedia.org/wiki/Marie_Curie", "Marie Curie", "scraped text", string(data)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_generated"}).AddRow(int64(42), now))

	quiz := &domain.StoredQuiz{
		URL:            "https://en.wikipedia.org/wiki/Marie_Curie",
		Title:          "Marie Curie",
		ScrapedContent: "scraped text",
		QuizData:       record,
	}
	require.NoError(t, adapter.Save(context.Background(), quiz))
	assert.Equal(t, int64(42), quiz.ID)
	assert.Equal(t, now, quiz.DateGenerated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveNilQuiz(t *testing.T) {
	db, _ := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	assert.Error(t, adapter.Save(context.Background(), nil))
	assert.Error(t, adapter.Save(context.Background(), &domain.StoredQuiz{URL: "u", Title: "t"}))
}

func TestGetByIDRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	record := sampleRecord()
	data, err := json.Marshal(record)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, title, date_generated, scraped_content, full_quiz_data`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated", "scraped_content", "full_quiz_data"}).
			AddRow(int64(7), "https://en.wikipedia.org/wiki/Marie_Curie", "Marie Curie", now, "scraped text", string(data)))

	quiz, err := adapter.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, int64(7), quiz.ID)
	assert.Equal(t, "Marie Curie", quiz.Title)
	assert.Equal(t, "scraped text", quiz.ScrapedContent)
	assert.Equal(t, record, quiz.QuizData, "deserialized quiz data must equal what was stored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, title, date_generated, scraped_content, full_quiz_data`)).
		WithArgs(int64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated", "scraped_content", "full_quiz_data"}))

	quiz, err := adapter.GetByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, quiz, "absent row must yield (nil, nil)")
}

func TestGetByIDCorruptQuizData(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, url, title, date_generated, scraped_content, full_quiz_data`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated", "scraped_content", "full_quiz_data"}).
			AddRow(int64(3), "u", "t", time.Now(), "c", "{not json"))

	_, err := adapter.GetByID(context.Background(), 3)
	assert.Error(t, err)
}

func TestListHistoryOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY date_generated DESC, id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated"}).
			AddRow(int64(3), "url3", "Third", now).
			AddRow(int64(2), "url2", "Second", now.Add(-time.Hour)).
			AddRow(int64(1), "url1", "First", now.Add(-2*time.Hour)))

	items, err := adapter.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, int64(1), items[2].ID)
	assert.True(t, items[0].DateGenerated.After(items[1].DateGenerated))
}

func TestListHistoryEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	adapter := NewQuizDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY date_generated DESC, id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated"}))

	items, err := adapter.ListHistory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
