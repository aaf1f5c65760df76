package service

import (
	"context"
	"errors"

	"speakcheck/internal/domain"
	"speakcheck/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReferenceModelService lazily builds and caches the per-sentence reference
// model. Models are generated on first demand, not at sentence creation;
// once generated they are reused for every later scoring of the sentence.
type ReferenceModelService interface {
	// EnsureModel returns the sentence's complete reference model, building
	// it first if the sentence does not have one yet. A failed build leaves
	// the model fields untouched so the sentence stays retry-eligible.
	EnsureModel(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error)

	// Regenerate discards the stored model and builds a fresh one.
	Regenerate(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error)
}

type referenceModelService struct {
	sentenceRepo domain.SentenceRepository
	provider     domain.ScoringProvider
	group        singleflight.Group
}

// NewReferenceModelService creates a new instance of ReferenceModelService.
func NewReferenceModelService(sentenceRepo domain.SentenceRepository, provider domain.ScoringProvider) ReferenceModelService {
	return &referenceModelService{
		sentenceRepo: sentenceRepo,
		provider:     provider,
	}
}

// EnsureModel implements ReferenceModelService. Concurrent callers for the
// same sentence are collapsed into a single provider build via singleflight;
// only one decompose/build round trip runs per sentence per process.
func (s *referenceModelService) EnsureModel(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error) {
	sentence, err := s.sentenceRepo.GetSentenceByID(ctx, sentenceID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load sentence for model check", err)
	}
	if sentence == nil {
		return nil, domain.NewSentenceNotFoundError(sentenceID)
	}
	if sentence.Model.IsComplete() {
		return &sentence.Model, nil
	}

	return s.generate(ctx, sentence)
}

// Regenerate implements ReferenceModelService
func (s *referenceModelService) Regenerate(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error) {
	sentence, err := s.sentenceRepo.GetSentenceByID(ctx, sentenceID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load sentence for model regeneration", err)
	}
	if sentence == nil {
		return nil, domain.NewSentenceNotFoundError(sentenceID)
	}

	return s.generate(ctx, sentence)
}

func (s *referenceModelService) generate(ctx context.Context, sentence *domain.TestSentence) (*domain.ReferenceModel, error) {
	result, err, _ := s.group.Do(sentence.ID, func() (interface{}, error) {
		// A concurrent caller may have finished the build while this one
		// waited on the flight group.
		current, err := s.sentenceRepo.GetSentenceByID(ctx, sentence.ID)
		if err == nil && current != nil && current.Model.IsComplete() && current.Model.GeneratedAt.After(sentence.Model.GeneratedAt) {
			return &current.Model, nil
		}

		model, err := s.build(ctx, sentence)
		if err != nil {
			var perr *domain.ProviderError
			if errors.As(err, &perr) && perr.Code != 0 {
				// Persist the provider code for diagnostics. The model
				// columns stay empty, so the next demand retries.
				if updateErr := s.sentenceRepo.UpdateModelErrorCode(ctx, sentence.ID, perr.Code); updateErr != nil {
					logger.Get().Error("failed to record model error code",
						zap.String("sentenceID", sentence.ID),
						zap.Int("errorCode", perr.Code),
						zap.Error(updateErr))
				}
			}
			return nil, err
		}

		if err := s.sentenceRepo.UpdateReferenceModel(ctx, sentence.ID, *model); err != nil {
			return nil, domain.NewPersistenceError("failed to persist reference model", err)
		}

		logger.Get().Info("reference model generated",
			zap.String("sentenceID", sentence.ID),
			zap.String("text", sentence.Text))
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.ReferenceModel), nil
}

func (s *referenceModelService) build(ctx context.Context, sentence *domain.TestSentence) (*domain.ReferenceModel, error) {
	dec, err := s.provider.Decompose(ctx, sentence.ID, sentence.Text)
	if err != nil {
		return nil, err
	}

	model, err := s.provider.BuildModel(ctx, sentence.ID, sentence.Text, dec)
	if err != nil {
		return nil, err
	}
	if !model.IsComplete() {
		return nil, domain.NewInternalError("provider returned an incomplete reference model", nil)
	}
	return model, nil
}
