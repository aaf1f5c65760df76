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

const userSelectColumns = `
		id "id",
		google_id "google_id",
		email "email",
		name "name",
		profile_picture_url "profile_picture_url",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"`

// UserRepositoryImpl implements domain.UserRepository using sqlx.
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepositoryImpl.
func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		deletedAt = &t
	}
	return &domain.User{
		ID:                m.ID,
		GoogleID:          m.GoogleID,
		Email:             m.Email,
		Name:              m.Name.String,
		ProfilePictureURL: m.ProfilePictureURL.String,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		DeletedAt:         deletedAt,
	}
}

// CreateUser implements domain.UserRepository
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (ID, GOOGLE_ID, EMAIL, NAME, PROFILE_PICTURE_URL, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.GoogleID,
		user.Email,
		util.StringToNullString(user.Name),
		util.StringToNullString(user.ProfilePictureURL),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByGoogleID implements domain.UserRepository. A missing user is not
// an error here; the auth flow decides whether to create one.
func (r *UserRepositoryImpl) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE google_id = :1 AND deleted_at IS NULL`, userSelectColumns)

	var m models.User
	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, googleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetUserByID implements domain.UserRepository
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = :1 AND deleted_at IS NULL`, userSelectColumns)

	var m models.User
	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&m), nil
}

// UpdateUser implements domain.UserRepository
func (r *UserRepositoryImpl) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
	          EMAIL = :1, NAME = :2, PROFILE_PICTURE_URL = :3, UPDATED_AT = :4
	          WHERE ID = :5`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.Email,
		util.StringToNullString(user.Name),
		util.StringToNullString(user.ProfilePictureURL),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
