package domain

import (
	"context"
	"time"
)

// AudioRef locates a learner recording without owning its bytes.
type AudioRef struct {
	Location        string
	SizeBytes       int64
	DurationSeconds float64
}

// TestAnswer is one scored submission of audio for one sentence within one
// session. Answers are append-only: created exactly once per submission,
// immutable afterward.
type TestAnswer struct {
	ID               string
	SessionID        string
	SentenceID       string
	Ordinal          int
	SentenceText     string
	Audio            AudioRef
	Result           ScoreResult
	EvaluatedAt      time.Time
	TimeSpentSeconds int
	CreatedAt        time.Time
}

// NewTestAnswer creates an answer record for a scoring result. The sentence
// text is snapshotted for audit, independent of later sentence edits.
func NewTestAnswer(sessionID string, sentence *TestSentence, ordinal int, audio AudioRef, result ScoreResult, timeSpentSeconds int) *TestAnswer {
	now := time.Now()
	return &TestAnswer{
		SessionID:        sessionID,
		SentenceID:       sentence.ID,
		Ordinal:          ordinal,
		SentenceText:     sentence.Text,
		Audio:            audio,
		Result:           result,
		EvaluatedAt:      now,
		TimeSpentSeconds: timeSpentSeconds,
		CreatedAt:        now,
	}
}

// Validate validates the answer
func (a *TestAnswer) Validate() error {
	if a.SessionID == "" {
		return NewInvalidInputError("session ID is required")
	}
	if a.SentenceID == "" {
		return NewInvalidInputError("sentence ID is required")
	}
	if a.Result.OverallScore < 0 || a.Result.OverallScore > 1 {
		return NewInvalidInputError("overall score must be within [0,1]")
	}
	return nil
}

// AnswerRepository defines the interface for answer persistence.
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *TestAnswer) error
	GetAnswersBySessionID(ctx context.Context, sessionID string) ([]TestAnswer, error)

	// GetScoresBySessionID returns the overall scores of every answer
	// recorded for the session, in recording order. Used to recompute the
	// session aggregate on each submission.
	GetScoresBySessionID(ctx context.Context, sessionID string) ([]float64, error)
}
