package models

import (
	"database/sql"
	"time"
)

// TestSentence is the database row for a canonical test sentence. The three
// reference-model columns are populated together or not at all.
type TestSentence struct {
	ID               string         `db:"id"`
	DisplayOrder     int            `db:"display_order"`
	SentenceText     string         `db:"sentence_text"`
	Translations     StringSlice    `db:"translations"`
	Difficulty       int            `db:"difficulty"`
	Tags             StringSlice    `db:"tags"`
	SyllLetters      sql.NullString `db:"syll_letters"`
	SyllPhonemes     sql.NullString `db:"syll_phonemes"`
	AcousticModel    sql.NullString `db:"acoustic_model"`
	ModelGeneratedAt sql.NullTime   `db:"model_generated_at"`
	ModelErrorCode   sql.NullInt64  `db:"model_error_code"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        sql.NullTime   `db:"deleted_at"`
}

func (TestSentence) TableName() string {
	return "test_sentences"
}
