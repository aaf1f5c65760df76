package dto

import "time"

// StartTestRequest starts a new test session. SentenceIDs selects an explicit
// sentence set; when empty the server picks a random subset.
type StartTestRequest struct {
	SentenceIDs []string `json:"sentence_ids,omitempty"`
	Count       int      `json:"count,omitempty"`
}

// EvaluateRequest submits one recording for scoring against one sentence of
// the session.
type EvaluateRequest struct {
	SentenceID       string  `json:"sentence_id"`
	AudioBase64      string  `json:"audio_base64"`
	AudioLocation    string  `json:"audio_location,omitempty"`
	AudioDuration    float64 `json:"audio_duration,omitempty"`
	TimeSpentSeconds int     `json:"time_spent_seconds,omitempty"`
}

// SentenceResponse is the client view of a test sentence. Reference model
// internals are never exposed; only readiness is.
type SentenceResponse struct {
	ID           string   `json:"id"`
	DisplayOrder int      `json:"display_order"`
	Text         string   `json:"text"`
	Translations []string `json:"translations,omitempty"`
	Difficulty   int      `json:"difficulty"`
	Tags         []string `json:"tags,omitempty"`
	ModelReady   bool     `json:"model_ready"`
}

// AdminSentenceRequest creates or updates a test sentence.
type AdminSentenceRequest struct {
	DisplayOrder int      `json:"display_order"`
	Text         string   `json:"text"`
	Translations []string `json:"translations,omitempty"`
	Difficulty   int      `json:"difficulty"`
	Tags         []string `json:"tags,omitempty"`
}

// WordScoreResponse is one word of a scoring result.
type WordScoreResponse struct {
	Word      string    `json:"word"`
	Score     float64   `json:"score"`
	Syllables []float64 `json:"syllables,omitempty"`
	Phonemes  []float64 `json:"phonemes,omitempty"`
}

// AnswerResponse is one scored submission.
type AnswerResponse struct {
	ID             string              `json:"id"`
	SentenceID     string              `json:"sentence_id"`
	Ordinal        int                 `json:"ordinal"`
	SentenceText   string              `json:"sentence_text"`
	OverallScore   float64             `json:"overall_score"`
	Words          []WordScoreResponse `json:"words,omitempty"`
	RecognizedText string              `json:"recognized_text,omitempty"`
	EvaluatedAt    time.Time           `json:"evaluated_at"`
}

// ProgressResponse summarizes how far a session has advanced.
type ProgressResponse struct {
	CompletedCount int     `json:"completed_count"`
	TotalCount     int     `json:"total_count"`
	AverageScore   float64 `json:"average_score"`
	Status         string  `json:"status"`
}

// EvaluateResponse is returned after a submission is scored and recorded.
type EvaluateResponse struct {
	Answer   AnswerResponse   `json:"answer"`
	Progress ProgressResponse `json:"progress"`
}

// SessionSummaryResponse is the lightweight view used in listings.
type SessionSummaryResponse struct {
	ID             string     `json:"id"`
	UserName       string     `json:"user_name"`
	TotalCount     int        `json:"total_count"`
	CompletedCount int        `json:"completed_count"`
	AverageScore   float64    `json:"average_score"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// SessionResponse is the full view of one session, including its sentences.
type SessionResponse struct {
	SessionSummaryResponse
	Sentences []SentenceResponse `json:"sentences"`
}
