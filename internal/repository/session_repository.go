package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakcheck/internal/domain"
	"speakcheck/internal/repository/models"
	"speakcheck/internal/util"

	"github.com/jmoiron/sqlx"
)

const sessionSelectColumns = `
		id "id",
		user_id "user_id",
		user_name "user_name",
		sentence_ids "sentence_ids",
		total_count "total_count",
		completed_count "completed_count",
		avg_score "avg_score",
		status "status",
		started_at "started_at",
		ended_at "ended_at",
		answer_ids "answer_ids",
		created_at "created_at",
		updated_at "updated_at"`

// SQLXSessionRepository implements domain.SessionRepository using sqlx.
type SQLXSessionRepository struct {
	db *sqlx.DB
}

// NewSQLXSessionRepository creates a new instance of SQLXSessionRepository.
func NewSQLXSessionRepository(db *sqlx.DB) domain.SessionRepository {
	return &SQLXSessionRepository{db: db}
}

func toDomainSession(m *models.TestSession) *domain.TestSession {
	if m == nil {
		return nil
	}
	var endedAt *time.Time
	if m.EndedAt.Valid {
		endedAt = &m.EndedAt.Time
	}

	return &domain.TestSession{
		ID:             m.ID,
		UserID:         m.UserID,
		UserName:       m.UserName,
		SentenceIDs:    m.SentenceIDs,
		TotalCount:     m.TotalCount,
		CompletedCount: m.CompletedCount,
		AverageScore:   m.AvgScore,
		Status:         domain.SessionStatus(m.Status),
		StartedAt:      m.StartedAt,
		EndedAt:        endedAt,
		AnswerIDs:      m.AnswerIDs,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CreateSession implements domain.SessionRepository
func (r *SQLXSessionRepository) CreateSession(ctx context.Context, session *domain.TestSession) error {
	if session.ID == "" {
		session.ID = util.NewULID()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	sentenceIDs, err := models.StringSlice(session.SentenceIDs).Value()
	if err != nil {
		return fmt.Errorf("failed to convert sentence ids: %w", err)
	}
	answerIDs, err := models.StringSlice(session.AnswerIDs).Value()
	if err != nil {
		return fmt.Errorf("failed to convert answer ids: %w", err)
	}

	query := `INSERT INTO test_sessions (ID, USER_ID, USER_NAME, SENTENCE_IDS, TOTAL_COUNT, COMPLETED_COUNT, AVG_SCORE, STATUS, STARTED_AT, ENDED_AT, ANSWER_IDS, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13)`

	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.UserName,
		sentenceIDs,
		session.TotalCount,
		session.CompletedCount,
		session.AverageScore,
		string(session.Status),
		session.StartedAt,
		endedAtOrNull(session.EndedAt),
		answerIDs,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test session: %w", err)
	}
	return nil
}

// GetSessionByID implements domain.SessionRepository
func (r *SQLXSessionRepository) GetSessionByID(ctx context.Context, id string) (*domain.TestSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM test_sessions WHERE id = :1`, sessionSelectColumns)

	var m models.TestSession
	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	return toDomainSession(&m), nil
}

// UpdateSession implements domain.SessionRepository. Only the aggregate and
// lifecycle columns change after creation.
func (r *SQLXSessionRepository) UpdateSession(ctx context.Context, session *domain.TestSession) error {
	answerIDs, err := models.StringSlice(session.AnswerIDs).Value()
	if err != nil {
		return fmt.Errorf("failed to convert answer ids: %w", err)
	}

	query := `UPDATE test_sessions
	          SET completed_count = :1, avg_score = :2, status = :3, ended_at = :4,
	              answer_ids = :5, updated_at = :6
	          WHERE id = :7`

	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, query,
		session.CompletedCount,
		session.AverageScore,
		string(session.Status),
		endedAtOrNull(session.EndedAt),
		answerIDs,
		time.Now(),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test session: %w", err)
	}
	return nil
}

// GetSessionsByUserID implements domain.SessionRepository
func (r *SQLXSessionRepository) GetSessionsByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.TestSession, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM test_sessions
	WHERE user_id = :1
	ORDER BY started_at DESC
	OFFSET %d ROWS FETCH NEXT %d ROWS ONLY`, sessionSelectColumns, offset, limit)

	var modelSessions []models.TestSession
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &modelSessions, query, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to get sessions by user id: %w", err)
	}

	sessions := make([]domain.TestSession, len(modelSessions))
	for i := range modelSessions {
		sessions[i] = *toDomainSession(&modelSessions[i])
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM test_sessions WHERE user_id = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions by user id: %w", err)
	}

	return sessions, total, nil
}

func endedAtOrNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return util.TimeToNullTime(*t)
}
