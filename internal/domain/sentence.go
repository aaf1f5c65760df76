package domain

import (
	"context"
	"time"
)

// ReferenceModel is the cached phonetic/acoustic representation of a
// sentence, built once by the external provider and reused for all scoring
// of that sentence.
type ReferenceModel struct {
	LetterSyllables  string
	PhonemeSyllables string
	AcousticModel    string
	GeneratedAt      time.Time
	ErrorCode        int
}

// IsComplete reports whether the model is usable for scoring. A model is
// either entirely populated or treated as absent; partial models are never
// usable.
func (m ReferenceModel) IsComplete() bool {
	return m.LetterSyllables != "" && m.PhonemeSyllables != "" && m.AcousticModel != ""
}

// TestSentence represents a canonical sentence to be pronounced.
type TestSentence struct {
	ID           string
	DisplayOrder int
	Text         string
	Translations []string
	Difficulty   int
	Tags         []string
	Model        ReferenceModel
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewTestSentence creates a new TestSentence instance
func NewTestSentence(displayOrder int, text string, translations []string, difficulty int, tags []string) *TestSentence {
	now := time.Now()
	return &TestSentence{
		DisplayOrder: displayOrder,
		Text:         text,
		Translations: translations,
		Difficulty:   difficulty,
		Tags:         tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the sentence
func (s *TestSentence) Validate() error {
	if s.Text == "" {
		return NewInvalidInputError("sentence text is required")
	}
	if s.DisplayOrder <= 0 {
		return NewInvalidInputError("display order must be positive")
	}
	return nil
}

// SentenceRepository defines the interface for sentence persistence.
type SentenceRepository interface {
	GetSentenceByID(ctx context.Context, id string) (*TestSentence, error)
	GetSentencesByIDs(ctx context.Context, ids []string) ([]*TestSentence, error)
	GetRandomSentences(ctx context.Context, count int) ([]*TestSentence, error)
	GetAllSentences(ctx context.Context) ([]*TestSentence, error)
	SaveSentence(ctx context.Context, sentence *TestSentence) error

	// UpdateReferenceModel persists a freshly generated model onto the
	// sentence row. It is the single durable write of model generation.
	UpdateReferenceModel(ctx context.Context, sentenceID string, model ReferenceModel) error

	// UpdateModelErrorCode records the provider error code of a failed
	// generation for diagnostics without touching the model fields, so the
	// sentence stays eligible for a later retry.
	UpdateModelErrorCode(ctx context.Context, sentenceID string, errorCode int) error
}
