package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProviderStage identifies which provider operation a failure came from.
type ProviderStage string

const (
	StageDecompose  ProviderStage = "decompose"
	StageBuildModel ProviderStage = "build_model"
	StageScore      ProviderStage = "score"
)

// ProviderError is a typed failure from the external scoring provider:
// either a nonzero provider error code or a transport-level failure
// (in which case Code is 0 and Cause is set). It is never retried
// automatically.
type ProviderError struct {
	Stage ProviderStage
	Code  int
	Cause error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scoring provider %s failed: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("scoring provider %s failed with error code %d", e.Stage, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func NewProviderCodeError(stage ProviderStage, code int) *ProviderError {
	return &ProviderError{Stage: stage, Code: code}
}

func NewProviderTransportError(stage ProviderStage, cause error) *ProviderError {
	return &ProviderError{Stage: stage, Cause: cause}
}

// Decomposition is the provider's syllable breakdown of a sentence text.
type Decomposition struct {
	LetterSyllables  string
	PhonemeSyllables string
}

// WordScore is the per-word portion of a scoring result.
type WordScore struct {
	Word      string    `json:"word"`
	Score     float64   `json:"score"`
	Syllables []float64 `json:"syllables,omitempty"`
	Phonemes  []float64 `json:"phonemes,omitempty"`
}

// ScoreResult is the outcome of scoring one audio submission against a
// reference model. Raw keeps the provider payload verbatim for audit; it is
// persisted but never exposed to end users.
type ScoreResult struct {
	OverallScore   float64
	Words          []WordScore
	RecognizedText string
	Raw            json.RawMessage
}

// ScoringProvider is the port to the external pronunciation provider.
// Each operation is a single network round trip with a fixed timeout and
// no automatic retries; failures come back as *ProviderError.
type ScoringProvider interface {
	// Decompose breaks the sentence text into letter and phoneme syllables.
	Decompose(ctx context.Context, sentenceID, text string) (*Decomposition, error)

	// BuildModel constructs the acoustic model from a prior decomposition.
	BuildModel(ctx context.Context, sentenceID, text string, dec *Decomposition) (*ReferenceModel, error)

	// Score evaluates base64-encoded audio against a complete reference model.
	Score(ctx context.Context, sentenceID, text string, model *ReferenceModel, audioBase64 string) (*ScoreResult, error)
}
