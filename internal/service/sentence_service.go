package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"speakcheck/internal/cache"
	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/logger"

	"go.uber.org/zap"
)

// SentenceService defines the interface for sentence catalog operations.
type SentenceService interface {
	GetAllSentences(ctx context.Context) ([]dto.SentenceResponse, error)
	CreateSentence(ctx context.Context, req *dto.AdminSentenceRequest) (*dto.SentenceResponse, error)

	// PrewarmModel builds the sentence's reference model ahead of demand so
	// the first learner submission does not pay the build latency.
	PrewarmModel(ctx context.Context, sentenceID string) (*dto.SentenceResponse, error)

	// RegenerateModel rebuilds the model even if a complete one exists.
	RegenerateModel(ctx context.Context, sentenceID string) (*dto.SentenceResponse, error)
}

type sentenceService struct {
	sentenceRepo domain.SentenceRepository
	refModels    ReferenceModelService
	cache        domain.Cache
	catalogTTL   time.Duration
}

// NewSentenceService creates a new instance of SentenceService.
func NewSentenceService(sentenceRepo domain.SentenceRepository, refModels ReferenceModelService, cacheAdapter domain.Cache, catalogTTL time.Duration) SentenceService {
	return &sentenceService{
		sentenceRepo: sentenceRepo,
		refModels:    refModels,
		cache:        cacheAdapter,
		catalogTTL:   catalogTTL,
	}
}

func catalogCacheKey() string {
	return cache.GenerateCacheKey("sentence", "catalog", "all")
}

// GetAllSentences implements SentenceService. The catalog listing is served
// from Redis when warm; the cached projection never includes model internals.
func (s *sentenceService) GetAllSentences(ctx context.Context) ([]dto.SentenceResponse, error) {
	key := catalogCacheKey()
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var responses []dto.SentenceResponse
		if err := json.Unmarshal([]byte(cached), &responses); err == nil {
			return responses, nil
		}
		logger.Get().Warn("corrupt sentence catalog cache entry, rebuilding", zap.String("key", key))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("sentence catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	sentences, err := s.sentenceRepo.GetAllSentences(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list sentences", err)
	}

	responses := make([]dto.SentenceResponse, len(sentences))
	for i, sentence := range sentences {
		responses[i] = sentenceToResponse(sentence)
	}

	if payload, err := json.Marshal(responses); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.catalogTTL); err != nil {
			logger.Get().Warn("sentence catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return responses, nil
}

// CreateSentence implements SentenceService
func (s *sentenceService) CreateSentence(ctx context.Context, req *dto.AdminSentenceRequest) (*dto.SentenceResponse, error) {
	sentence := domain.NewTestSentence(req.DisplayOrder, req.Text, req.Translations, req.Difficulty, req.Tags)
	if err := sentence.Validate(); err != nil {
		return nil, err
	}

	if err := s.sentenceRepo.SaveSentence(ctx, sentence); err != nil {
		return nil, domain.NewPersistenceError("failed to save sentence", err)
	}
	s.invalidateCatalog(ctx)

	logger.Get().Info("sentence created",
		zap.String("sentenceID", sentence.ID),
		zap.Int("displayOrder", sentence.DisplayOrder))

	resp := sentenceToResponse(sentence)
	return &resp, nil
}

// PrewarmModel implements SentenceService
func (s *sentenceService) PrewarmModel(ctx context.Context, sentenceID string) (*dto.SentenceResponse, error) {
	if _, err := s.refModels.EnsureModel(ctx, sentenceID); err != nil {
		return nil, wrapProviderFailure(err)
	}
	s.invalidateCatalog(ctx)
	return s.refreshedResponse(ctx, sentenceID)
}

// RegenerateModel implements SentenceService
func (s *sentenceService) RegenerateModel(ctx context.Context, sentenceID string) (*dto.SentenceResponse, error) {
	if _, err := s.refModels.Regenerate(ctx, sentenceID); err != nil {
		return nil, wrapProviderFailure(err)
	}
	s.invalidateCatalog(ctx)
	return s.refreshedResponse(ctx, sentenceID)
}

func wrapProviderFailure(err error) error {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return domain.WrapProviderError(perr)
	}
	return err
}

// invalidateCatalog drops the cached listing after a write that changes it
// (new sentence, or a model-readiness flip). Best effort.
func (s *sentenceService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Delete(ctx, catalogCacheKey()); err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("sentence catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *sentenceService) refreshedResponse(ctx context.Context, sentenceID string) (*dto.SentenceResponse, error) {
	sentence, err := s.sentenceRepo.GetSentenceByID(ctx, sentenceID)
	if err != nil {
		return nil, domain.NewInternalError("failed to reload sentence", err)
	}
	if sentence == nil {
		return nil, domain.NewSentenceNotFoundError(sentenceID)
	}
	resp := sentenceToResponse(sentence)
	return &resp, nil
}
