package models

import (
	"database/sql"
	"time"
)

// TestSession is the database row for one learner's test session.
// Sessions are append-only history and carry their own aggregate columns.
type TestSession struct {
	ID             string       `db:"id"`
	UserID         string       `db:"user_id"`
	UserName       string       `db:"user_name"`
	SentenceIDs    StringSlice  `db:"sentence_ids"`
	TotalCount     int          `db:"total_count"`
	CompletedCount int          `db:"completed_count"`
	AvgScore       float64      `db:"avg_score"`
	Status         string       `db:"status"`
	StartedAt      time.Time    `db:"started_at"`
	EndedAt        sql.NullTime `db:"ended_at"`
	AnswerIDs      StringSlice  `db:"answer_ids"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}
