package models

import "time"

// Quiz mirrors the quizzes table row.
type Quiz struct {
	ID             int64     `db:"id"`
	URL            string    `db:"url"`
	Title          string    `db:"title"`
	DateGenerated  time.Time `db:"date_generated"`
	ScrapedContent string    `db:"scraped_content"`
	FullQuizData   string    `db:"full_quiz_data"`
}

// QuizSummary is the projection used by the history listing.
type QuizSummary struct {
	ID            int64     `db:"id"`
	URL           string    `db:"url"`
	Title         string    `db:"title"`
	DateGenerated time.Time `db:"date_generated"`
}
