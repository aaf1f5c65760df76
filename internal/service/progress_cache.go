package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"speakcheck/internal/cache"
	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/logger"

	"go.uber.org/zap"
)

const (
	progressFieldCompleted = "completed_count"
	progressFieldTotal     = "total_count"
	progressFieldAvgScore  = "avg_score"
	progressFieldStatus    = "status"
)

// ProgressCacheService keeps a small per-session progress projection in the
// cache so progress polls do not touch the database. The projection is
// advisory: it is rewritten after every recorded answer and any read failure
// falls back to the session row.
type ProgressCacheService interface {
	GetProgress(ctx context.Context, sessionID string) (*dto.ProgressResponse, error)
	PutProgress(ctx context.Context, session *domain.TestSession) error
	Invalidate(ctx context.Context, sessionID string) error
}

type progressCacheService struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewProgressCacheService creates a new instance of ProgressCacheService.
func NewProgressCacheService(cacheAdapter domain.Cache, ttl time.Duration) ProgressCacheService {
	return &progressCacheService{cache: cacheAdapter, ttl: ttl}
}

func progressKey(sessionID string) string {
	return cache.GenerateCacheKey("test", "progress", sessionID)
}

// GetProgress implements ProgressCacheService. It returns domain.ErrCacheMiss
// when no projection exists for the session.
func (s *progressCacheService) GetProgress(ctx context.Context, sessionID string) (*dto.ProgressResponse, error) {
	fields, err := s.cache.HGetAll(ctx, progressKey(sessionID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrCacheMiss
	}

	completed, err := strconv.Atoi(fields[progressFieldCompleted])
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	total, err := strconv.Atoi(fields[progressFieldTotal])
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	avg, err := strconv.ParseFloat(fields[progressFieldAvgScore], 64)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}

	return &dto.ProgressResponse{
		CompletedCount: completed,
		TotalCount:     total,
		AverageScore:   avg,
		Status:         fields[progressFieldStatus],
	}, nil
}

// PutProgress implements ProgressCacheService
func (s *progressCacheService) PutProgress(ctx context.Context, session *domain.TestSession) error {
	key := progressKey(session.ID)

	fields := map[string]string{
		progressFieldCompleted: strconv.Itoa(session.CompletedCount),
		progressFieldTotal:     strconv.Itoa(session.TotalCount),
		progressFieldAvgScore:  strconv.FormatFloat(session.AverageScore, 'f', -1, 64),
		progressFieldStatus:    string(session.Status),
	}
	for field, value := range fields {
		if err := s.cache.HSet(ctx, key, field, value); err != nil {
			return err
		}
	}
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		logger.Get().Warn("failed to set progress cache expiration",
			zap.String("sessionID", session.ID),
			zap.Error(err))
	}
	return nil
}

// Invalidate implements ProgressCacheService
func (s *progressCacheService) Invalidate(ctx context.Context, sessionID string) error {
	err := s.cache.Delete(ctx, progressKey(sessionID))
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		return err
	}
	return nil
}
