package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakcheck/internal/domain"
	"speakcheck/internal/repository/models"
	"speakcheck/internal/util"

	"github.com/jmoiron/sqlx"
)

const sentenceSelectColumns = `
		id "id",
		display_order "display_order",
		sentence_text "sentence_text",
		translations "translations",
		difficulty "difficulty",
		tags "tags",
		syll_letters "syll_letters",
		syll_phonemes "syll_phonemes",
		acoustic_model "acoustic_model",
		model_generated_at "model_generated_at",
		model_error_code "model_error_code",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"`

// SQLXSentenceRepository implements domain.SentenceRepository using sqlx.
type SQLXSentenceRepository struct {
	db *sqlx.DB
}

// NewSQLXSentenceRepository creates a new instance of SQLXSentenceRepository.
func NewSQLXSentenceRepository(db *sqlx.DB) domain.SentenceRepository {
	return &SQLXSentenceRepository{db: db}
}

func toDomainSentence(m *models.TestSentence) *domain.TestSentence {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &domain.TestSentence{
		ID:           m.ID,
		DisplayOrder: m.DisplayOrder,
		Text:         m.SentenceText,
		Translations: m.Translations,
		Difficulty:   m.Difficulty,
		Tags:         m.Tags,
		Model: domain.ReferenceModel{
			LetterSyllables:  m.SyllLetters.String,
			PhonemeSyllables: m.SyllPhonemes.String,
			AcousticModel:    m.AcousticModel.String,
			GeneratedAt:      m.ModelGeneratedAt.Time,
			ErrorCode:        int(m.ModelErrorCode.Int64),
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: deletedAt,
	}
}

// GetSentenceByID implements domain.SentenceRepository
func (r *SQLXSentenceRepository) GetSentenceByID(ctx context.Context, id string) (*domain.TestSentence, error) {
	query := fmt.Sprintf(`SELECT %s FROM test_sentences WHERE id = :1 AND deleted_at IS NULL`, sentenceSelectColumns)

	var m models.TestSentence
	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sentence by id: %w", err)
	}
	return toDomainSentence(&m), nil
}

// GetSentencesByIDs implements domain.SentenceRepository
func (r *SQLXSentenceRepository) GetSentencesByIDs(ctx context.Context, ids []string) ([]*domain.TestSentence, error) {
	if len(ids) == 0 {
		return []*domain.TestSentence{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf(":%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM test_sentences WHERE id IN (%s) AND deleted_at IS NULL`,
		sentenceSelectColumns, strings.Join(placeholders, ", "))

	var modelSentences []models.TestSentence
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &modelSentences, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get sentences by ids: %w", err)
	}

	sentences := make([]*domain.TestSentence, 0, len(modelSentences))
	for i := range modelSentences {
		sentences = append(sentences, toDomainSentence(&modelSentences[i]))
	}
	return sentences, nil
}

// GetRandomSentences implements domain.SentenceRepository
func (r *SQLXSentenceRepository) GetRandomSentences(ctx context.Context, count int) ([]*domain.TestSentence, error) {
	if count <= 0 {
		count = 10
	}

	query := fmt.Sprintf(`SELECT %s FROM test_sentences
	WHERE deleted_at IS NULL
	ORDER BY DBMS_RANDOM.VALUE
	FETCH FIRST %d ROWS ONLY`, sentenceSelectColumns, count)

	var modelSentences []models.TestSentence
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &modelSentences, query); err != nil {
		return nil, fmt.Errorf("failed to get random sentences: %w", err)
	}

	sentences := make([]*domain.TestSentence, 0, len(modelSentences))
	for i := range modelSentences {
		sentences = append(sentences, toDomainSentence(&modelSentences[i]))
	}
	return sentences, nil
}

// GetAllSentences implements domain.SentenceRepository
func (r *SQLXSentenceRepository) GetAllSentences(ctx context.Context) ([]*domain.TestSentence, error) {
	query := fmt.Sprintf(`SELECT %s FROM test_sentences
	WHERE deleted_at IS NULL
	ORDER BY display_order`, sentenceSelectColumns)

	var modelSentences []models.TestSentence
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &modelSentences, query); err != nil {
		return nil, fmt.Errorf("failed to get all sentences: %w", err)
	}

	sentences := make([]*domain.TestSentence, 0, len(modelSentences))
	for i := range modelSentences {
		sentences = append(sentences, toDomainSentence(&modelSentences[i]))
	}
	return sentences, nil
}

// SaveSentence implements domain.SentenceRepository
func (r *SQLXSentenceRepository) SaveSentence(ctx context.Context, sentence *domain.TestSentence) error {
	if sentence.ID == "" {
		sentence.ID = util.NewULID()
	}
	now := time.Now()
	if sentence.CreatedAt.IsZero() {
		sentence.CreatedAt = now
	}
	sentence.UpdatedAt = now

	translations, err := models.StringSlice(sentence.Translations).Value()
	if err != nil {
		return fmt.Errorf("failed to convert translations: %w", err)
	}
	tags, err := models.StringSlice(sentence.Tags).Value()
	if err != nil {
		return fmt.Errorf("failed to convert tags: %w", err)
	}

	query := `INSERT INTO test_sentences (ID, DISPLAY_ORDER, SENTENCE_TEXT, TRANSLATIONS, DIFFICULTY, TAGS, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, query,
		sentence.ID,
		sentence.DisplayOrder,
		sentence.Text,
		translations,
		sentence.Difficulty,
		tags,
		sentence.CreatedAt,
		sentence.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sentence: %w", err)
	}
	return nil
}

// UpdateReferenceModel implements domain.SentenceRepository. It is the only
// write of model generation; the error code column is cleared alongside.
func (r *SQLXSentenceRepository) UpdateReferenceModel(ctx context.Context, sentenceID string, model domain.ReferenceModel) error {
	query := `UPDATE test_sentences
	          SET syll_letters = :1, syll_phonemes = :2, acoustic_model = :3,
	              model_generated_at = :4, model_error_code = 0, updated_at = :5
	          WHERE id = :6 AND deleted_at IS NULL`

	generatedAt := model.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		model.LetterSyllables,
		model.PhonemeSyllables,
		model.AcousticModel,
		generatedAt,
		time.Now(),
		sentenceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reference model: %w", err)
	}
	return nil
}

// UpdateModelErrorCode implements domain.SentenceRepository
func (r *SQLXSentenceRepository) UpdateModelErrorCode(ctx context.Context, sentenceID string, errorCode int) error {
	query := `UPDATE test_sentences
	          SET model_error_code = :1, updated_at = :2
	          WHERE id = :3 AND deleted_at IS NULL`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, errorCode, time.Now(), sentenceID)
	if err != nil {
		return fmt.Errorf("failed to update model error code: %w", err)
	}
	return nil
}
