package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"speakcheck/internal/domain"
	"speakcheck/internal/repository/models"
	"speakcheck/internal/util"

	"github.com/jmoiron/sqlx"
)

const answerSelectColumns = `
		id "id",
		session_id "session_id",
		sentence_id "sentence_id",
		ordinal "ordinal",
		sentence_text "sentence_text",
		audio_location "audio_location",
		audio_size "audio_size",
		audio_duration "audio_duration",
		overall_score "overall_score",
		word_scores "word_scores",
		recognized_text "recognized_text",
		raw_response "raw_response",
		evaluated_at "evaluated_at",
		time_spent_seconds "time_spent_seconds",
		created_at "created_at"`

// SQLXAnswerRepository implements domain.AnswerRepository using sqlx.
type SQLXAnswerRepository struct {
	db *sqlx.DB
}

// NewSQLXAnswerRepository creates a new instance of SQLXAnswerRepository.
func NewSQLXAnswerRepository(db *sqlx.DB) domain.AnswerRepository {
	return &SQLXAnswerRepository{db: db}
}

func toDomainAnswer(m *models.TestAnswer) (*domain.TestAnswer, error) {
	if m == nil {
		return nil, nil
	}

	var words []domain.WordScore
	if m.WordScores.Valid && m.WordScores.String != "" {
		if err := json.Unmarshal([]byte(m.WordScores.String), &words); err != nil {
			return nil, fmt.Errorf("failed to decode word scores for answer %s: %w", m.ID, err)
		}
	}

	var raw json.RawMessage
	if m.RawResponse.Valid {
		raw = json.RawMessage(m.RawResponse.String)
	}

	return &domain.TestAnswer{
		ID:           m.ID,
		SessionID:    m.SessionID,
		SentenceID:   m.SentenceID,
		Ordinal:      m.Ordinal,
		SentenceText: m.SentenceText,
		Audio: domain.AudioRef{
			Location:        m.AudioLocation.String,
			SizeBytes:       m.AudioSize.Int64,
			DurationSeconds: m.AudioDuration.Float64,
		},
		Result: domain.ScoreResult{
			OverallScore:   m.OverallScore,
			Words:          words,
			RecognizedText: m.RecognizedText.String,
			Raw:            raw,
		},
		EvaluatedAt:      m.EvaluatedAt,
		TimeSpentSeconds: m.TimeSpentSeconds,
		CreatedAt:        m.CreatedAt,
	}, nil
}

// CreateAnswer implements domain.AnswerRepository. Answers are append-only;
// there is no update path.
func (r *SQLXAnswerRepository) CreateAnswer(ctx context.Context, answer *domain.TestAnswer) error {
	if answer.ID == "" {
		answer.ID = util.NewULID()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}

	var wordScoresStr string
	if len(answer.Result.Words) > 0 {
		encoded, err := json.Marshal(answer.Result.Words)
		if err != nil {
			return fmt.Errorf("failed to encode word scores: %w", err)
		}
		wordScoresStr = string(encoded)
	}

	query := `INSERT INTO test_answers (ID, SESSION_ID, SENTENCE_ID, ORDINAL, SENTENCE_TEXT, AUDIO_LOCATION, AUDIO_SIZE, AUDIO_DURATION, OVERALL_SCORE, WORD_SCORES, RECOGNIZED_TEXT, RAW_RESPONSE, EVALUATED_AT, TIME_SPENT_SECONDS, CREATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13, :14, :15)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		answer.ID,
		answer.SessionID,
		answer.SentenceID,
		answer.Ordinal,
		answer.SentenceText,
		util.StringToNullString(answer.Audio.Location),
		answer.Audio.SizeBytes,
		answer.Audio.DurationSeconds,
		answer.Result.OverallScore,
		util.StringToNullString(wordScoresStr),
		util.StringToNullString(answer.Result.RecognizedText),
		util.StringToNullString(string(answer.Result.Raw)),
		answer.EvaluatedAt,
		answer.TimeSpentSeconds,
		answer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test answer: %w", err)
	}
	return nil
}

// GetAnswersBySessionID implements domain.AnswerRepository
func (r *SQLXAnswerRepository) GetAnswersBySessionID(ctx context.Context, sessionID string) ([]domain.TestAnswer, error) {
	query := fmt.Sprintf(`SELECT %s FROM test_answers
	WHERE session_id = :1
	ORDER BY created_at`, answerSelectColumns)

	var modelAnswers []models.TestAnswer
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &modelAnswers, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get answers by session id: %w", err)
	}

	answers := make([]domain.TestAnswer, 0, len(modelAnswers))
	for i := range modelAnswers {
		answer, err := toDomainAnswer(&modelAnswers[i])
		if err != nil {
			return nil, err
		}
		answers = append(answers, *answer)
	}
	return answers, nil
}

// GetScoresBySessionID implements domain.AnswerRepository. The aggregate is
// recomputed from this full set on every submission.
func (r *SQLXAnswerRepository) GetScoresBySessionID(ctx context.Context, sessionID string) ([]float64, error) {
	query := `SELECT overall_score "overall_score" FROM test_answers
	WHERE session_id = :1
	ORDER BY created_at`

	var scores []float64
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &scores, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get scores by session id: %w", err)
	}
	return scores, nil
}
