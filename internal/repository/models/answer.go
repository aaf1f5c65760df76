package models

import (
	"database/sql"
	"time"
)

// TestAnswer is the database row for one scored submission. Rows are
// immutable once written; WordScores and RawResponse are CLOB JSON.
type TestAnswer struct {
	ID               string          `db:"id"`
	SessionID        string          `db:"session_id"`
	SentenceID       string          `db:"sentence_id"`
	Ordinal          int             `db:"ordinal"`
	SentenceText     string          `db:"sentence_text"`
	AudioLocation    sql.NullString  `db:"audio_location"`
	AudioSize        sql.NullInt64   `db:"audio_size"`
	AudioDuration    sql.NullFloat64 `db:"audio_duration"`
	OverallScore     float64         `db:"overall_score"`
	WordScores       sql.NullString  `db:"word_scores"`
	RecognizedText   sql.NullString  `db:"recognized_text"`
	RawResponse      sql.NullString  `db:"raw_response"`
	EvaluatedAt      time.Time       `db:"evaluated_at"`
	TimeSpentSeconds int             `db:"time_spent_seconds"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (TestAnswer) TableName() string {
	return "test_answers"
}
