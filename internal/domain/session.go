package domain

import (
	"context"
	"time"
)

// SessionStatus is the lifecycle state of a test session.
// Transitions only ever move forward: in_progress -> completed | abandoned.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// TestSession represents one learner's attempt at an ordered sequence of
// sentences. Sessions are never deleted; they serve as permanent history.
type TestSession struct {
	ID             string
	UserID         string
	UserName       string
	SentenceIDs    []string
	TotalCount     int
	CompletedCount int
	AverageScore   float64
	Status         SessionStatus
	StartedAt      time.Time
	EndedAt        *time.Time
	AnswerIDs      []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTestSession creates a session in the in_progress state for the given
// sentence order.
func NewTestSession(userID, userName string, sentenceIDs []string) *TestSession {
	now := time.Now()
	return &TestSession{
		UserID:      userID,
		UserName:    userName,
		SentenceIDs: sentenceIDs,
		TotalCount:  len(sentenceIDs),
		Status:      SessionInProgress,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the session
func (s *TestSession) Validate() error {
	if s.UserID == "" {
		return NewInvalidInputError("user ID is required")
	}
	if len(s.SentenceIDs) == 0 {
		return NewInvalidInputError("at least one sentence is required")
	}
	return nil
}

// ContainsSentence reports whether the sentence is one of the session's
// targets and returns its 1-based ordinal in the started order.
func (s *TestSession) ContainsSentence(sentenceID string) (int, bool) {
	for i, id := range s.SentenceIDs {
		if id == sentenceID {
			return i + 1, true
		}
	}
	return 0, false
}

// RecordAnswer folds one recorded answer into the session aggregate.
// allScores must be the overall scores of every answer recorded so far,
// including the new one: the average is recomputed from the full set rather
// than incrementally, so a storage-level retry cannot drift it.
// CompletedCount counts submissions, not distinct sentences; re-submission
// of a sentence is a new answer.
func (s *TestSession) RecordAnswer(answerID string, allScores []float64) error {
	if s.Status != SessionInProgress {
		return NewInvalidStateError(s.ID, s.Status)
	}
	if len(allScores) != len(s.AnswerIDs)+1 {
		return NewInternalError("answer score set does not match session answer list", nil)
	}

	s.AnswerIDs = append(s.AnswerIDs, answerID)
	s.CompletedCount = len(s.AnswerIDs)

	var sum float64
	for _, score := range allScores {
		sum += score
	}
	s.AverageScore = sum / float64(len(allScores))
	s.UpdatedAt = time.Now()

	if s.CompletedCount >= s.TotalCount {
		now := time.Now()
		s.Status = SessionCompleted
		s.EndedAt = &now
	}
	return nil
}

// Abandon moves the session to its abandoned terminal state.
func (s *TestSession) Abandon() error {
	if s.Status != SessionInProgress {
		return NewInvalidStateError(s.ID, s.Status)
	}
	now := time.Now()
	s.Status = SessionAbandoned
	s.EndedAt = &now
	s.UpdatedAt = now
	return nil
}

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *TestSession) error
	GetSessionByID(ctx context.Context, id string) (*TestSession, error)
	UpdateSession(ctx context.Context, session *TestSession) error
	GetSessionsByUserID(ctx context.Context, userID string, limit, offset int) ([]TestSession, int, error)
}
