package service

import (
	"context"

	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
)

// UserService defines the interface for user profile and history operations.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	GetUserSessions(ctx context.Context, userID string, limit, offset int) (*dto.UserSessionsResponse, error)
}

type userService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, sessionRepo domain.SessionRepository) UserService {
	return &userService{userRepo: userRepo, sessionRepo: sessionRepo}
}

// GetProfile implements UserService
func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.UserProfileResponse{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		ProfilePictureURL: user.ProfilePictureURL,
	}, nil
}

// GetUserSessions implements UserService
func (s *userService) GetUserSessions(ctx context.Context, userID string, limit, offset int) (*dto.UserSessionsResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	sessions, total, err := s.sessionRepo.GetSessionsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user sessions", err)
	}

	summaries := make([]dto.SessionSummaryResponse, len(sessions))
	for i := range sessions {
		summaries[i] = summaryFromSession(&sessions[i])
	}

	return &dto.UserSessionsResponse{
		Sessions: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}
