package service

import (
	"context"
	"errors"

	"speakcheck/internal/config"
	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/logger"

	"go.uber.org/zap"
)

// TestService defines the interface for test session operations.
type TestService interface {
	StartSession(ctx context.Context, userID, userName string, req *dto.StartTestRequest) (*dto.SessionResponse, error)
	Evaluate(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error)
	GetSession(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error)
	GetSessionAnswers(ctx context.Context, userID, sessionID string) ([]dto.AnswerResponse, error)
	AbandonSession(ctx context.Context, userID, sessionID string) (*dto.SessionSummaryResponse, error)
}

type testService struct {
	sentenceRepo  domain.SentenceRepository
	sessionRepo   domain.SessionRepository
	answerRepo    domain.AnswerRepository
	provider      domain.ScoringProvider
	refModels     ReferenceModelService
	progressCache ProgressCacheService
	txManager     domain.TransactionManager
	locks         *sessionLocks
	cfg           *config.Config
}

// NewTestService creates a new instance of TestService.
func NewTestService(
	sentenceRepo domain.SentenceRepository,
	sessionRepo domain.SessionRepository,
	answerRepo domain.AnswerRepository,
	provider domain.ScoringProvider,
	refModels ReferenceModelService,
	progressCache ProgressCacheService,
	txManager domain.TransactionManager,
	cfg *config.Config,
) TestService {
	return &testService{
		sentenceRepo:  sentenceRepo,
		sessionRepo:   sessionRepo,
		answerRepo:    answerRepo,
		provider:      provider,
		refModels:     refModels,
		progressCache: progressCache,
		txManager:     txManager,
		locks:         newSessionLocks(),
		cfg:           cfg,
	}
}

// StartSession implements TestService. An explicit sentence selection is
// honored in the given order; without one a random subset of the configured
// size is drawn.
func (s *testService) StartSession(ctx context.Context, userID, userName string, req *dto.StartTestRequest) (*dto.SessionResponse, error) {
	var sentences []*domain.TestSentence

	if len(req.SentenceIDs) > 0 {
		found, err := s.sentenceRepo.GetSentencesByIDs(ctx, req.SentenceIDs)
		if err != nil {
			return nil, domain.NewInternalError("failed to load selected sentences", err)
		}
		byID := make(map[string]*domain.TestSentence, len(found))
		for _, sentence := range found {
			byID[sentence.ID] = sentence
		}
		// Preserve the requested order; every requested ID must exist.
		for _, id := range req.SentenceIDs {
			sentence, ok := byID[id]
			if !ok {
				return nil, domain.NewSentenceNotFoundError(id)
			}
			sentences = append(sentences, sentence)
		}
	} else {
		count := req.Count
		if count <= 0 {
			count = s.cfg.Test.DefaultSentenceCount
		}
		var err error
		sentences, err = s.sentenceRepo.GetRandomSentences(ctx, count)
		if err != nil {
			return nil, domain.NewInternalError("failed to draw random sentences", err)
		}
	}

	if len(sentences) == 0 {
		return nil, domain.NewInvalidInputError("no sentences available for a test session")
	}

	sentenceIDs := make([]string, len(sentences))
	for i, sentence := range sentences {
		sentenceIDs[i] = sentence.ID
	}

	session := domain.NewTestSession(userID, userName, sentenceIDs)
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, domain.NewPersistenceError("failed to create test session", err)
	}

	logger.Get().Info("test session started",
		zap.String("sessionID", session.ID),
		zap.String("userID", userID),
		zap.Int("sentenceCount", len(sentenceIDs)))

	return sessionToResponse(session, sentences), nil
}

// Evaluate implements TestService. The whole submission runs under the
// session's keyed lock: score, then insert the answer and fold it into the
// session aggregate inside one transaction. A provider failure leaves the
// session untouched.
func (s *testService) Evaluate(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
	if req.SentenceID == "" {
		return nil, domain.NewInvalidInputError("sentence_id is required")
	}
	if req.AudioBase64 == "" {
		return nil, domain.NewInvalidInputError("audio_base64 is required")
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionInProgress {
		return nil, domain.NewInvalidStateError(session.ID, session.Status)
	}

	ordinal, ok := session.ContainsSentence(req.SentenceID)
	if !ok {
		return nil, domain.NewInvalidInputError("sentence is not part of this session")
	}

	sentence, err := s.sentenceRepo.GetSentenceByID(ctx, req.SentenceID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load sentence", err)
	}
	if sentence == nil {
		return nil, domain.NewSentenceNotFoundError(req.SentenceID)
	}

	model, err := s.refModels.EnsureModel(ctx, sentence.ID)
	if err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			return nil, domain.NewModelUnavailableError(sentence.ID, perr)
		}
		return nil, err
	}

	result, err := s.provider.Score(ctx, sentence.ID, sentence.Text, model, req.AudioBase64)
	if err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			return nil, domain.WrapProviderError(perr)
		}
		return nil, domain.NewInternalError("scoring failed", err)
	}

	audio := domain.AudioRef{
		Location:        req.AudioLocation,
		SizeBytes:       int64(len(req.AudioBase64)) * 3 / 4,
		DurationSeconds: req.AudioDuration,
	}
	answer := domain.NewTestAnswer(session.ID, sentence, ordinal, audio, *result, req.TimeSpentSeconds)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.answerRepo.CreateAnswer(txCtx, answer); err != nil {
			return err
		}
		scores, err := s.answerRepo.GetScoresBySessionID(txCtx, session.ID)
		if err != nil {
			return err
		}
		if err := session.RecordAnswer(answer.ID, scores); err != nil {
			return err
		}
		return s.sessionRepo.UpdateSession(txCtx, session)
	})
	if err != nil {
		var derr *domain.DomainError
		if errors.As(err, &derr) {
			return nil, derr
		}
		return nil, domain.NewPersistenceError("failed to record answer", err)
	}

	if err := s.progressCache.PutProgress(ctx, session); err != nil {
		logger.Get().Warn("failed to refresh progress cache",
			zap.String("sessionID", session.ID),
			zap.Error(err))
	}

	logger.Get().Info("answer recorded",
		zap.String("sessionID", session.ID),
		zap.String("answerID", answer.ID),
		zap.Float64("overallScore", result.OverallScore),
		zap.Int("completedCount", session.CompletedCount),
		zap.String("status", string(session.Status)))

	return &dto.EvaluateResponse{
		Answer:   answerToResponse(answer),
		Progress: progressFromSession(session),
	}, nil
}

// GetSession implements TestService
func (s *testService) GetSession(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	sentences, err := s.sentenceRepo.GetSentencesByIDs(ctx, session.SentenceIDs)
	if err != nil {
		return nil, domain.NewInternalError("failed to load session sentences", err)
	}

	resp := sessionToResponse(session, sentences)

	// Serve progress from the cache when the projection is warm; the DB row
	// already in hand is the fallback.
	if cached, err := s.progressCache.GetProgress(ctx, sessionID); err == nil {
		resp.CompletedCount = cached.CompletedCount
		resp.AverageScore = cached.AverageScore
		resp.Status = cached.Status
	}

	return resp, nil
}

// GetSessionAnswers implements TestService
func (s *testService) GetSessionAnswers(ctx context.Context, userID, sessionID string) ([]dto.AnswerResponse, error) {
	if _, err := s.loadOwnedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.GetAnswersBySessionID(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load session answers", err)
	}

	responses := make([]dto.AnswerResponse, len(answers))
	for i := range answers {
		responses[i] = answerToResponse(&answers[i])
	}
	return responses, nil
}

// AbandonSession implements TestService
func (s *testService) AbandonSession(ctx context.Context, userID, sessionID string) (*dto.SessionSummaryResponse, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Abandon(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateSession(ctx, session); err != nil {
		return nil, domain.NewPersistenceError("failed to abandon session", err)
	}

	if err := s.progressCache.Invalidate(ctx, sessionID); err != nil {
		logger.Get().Warn("failed to invalidate progress cache",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	}

	logger.Get().Info("test session abandoned",
		zap.String("sessionID", sessionID),
		zap.String("userID", userID))

	summary := summaryFromSession(session)
	return &summary, nil
}

func (s *testService) loadOwnedSession(ctx context.Context, userID, sessionID string) (*domain.TestSession, error) {
	session, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load session", err)
	}
	if session == nil {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	if session.UserID != userID {
		// Do not leak existence of other users' sessions.
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

func sentenceToResponse(sentence *domain.TestSentence) dto.SentenceResponse {
	return dto.SentenceResponse{
		ID:           sentence.ID,
		DisplayOrder: sentence.DisplayOrder,
		Text:         sentence.Text,
		Translations: sentence.Translations,
		Difficulty:   sentence.Difficulty,
		Tags:         sentence.Tags,
		ModelReady:   sentence.Model.IsComplete(),
	}
}

func answerToResponse(answer *domain.TestAnswer) dto.AnswerResponse {
	words := make([]dto.WordScoreResponse, len(answer.Result.Words))
	for i, w := range answer.Result.Words {
		words[i] = dto.WordScoreResponse{
			Word:      w.Word,
			Score:     w.Score,
			Syllables: w.Syllables,
			Phonemes:  w.Phonemes,
		}
	}
	return dto.AnswerResponse{
		ID:             answer.ID,
		SentenceID:     answer.SentenceID,
		Ordinal:        answer.Ordinal,
		SentenceText:   answer.SentenceText,
		OverallScore:   answer.Result.OverallScore,
		Words:          words,
		RecognizedText: answer.Result.RecognizedText,
		EvaluatedAt:    answer.EvaluatedAt,
	}
}

func progressFromSession(session *domain.TestSession) dto.ProgressResponse {
	return dto.ProgressResponse{
		CompletedCount: session.CompletedCount,
		TotalCount:     session.TotalCount,
		AverageScore:   session.AverageScore,
		Status:         string(session.Status),
	}
}

func summaryFromSession(session *domain.TestSession) dto.SessionSummaryResponse {
	return dto.SessionSummaryResponse{
		ID:             session.ID,
		UserName:       session.UserName,
		TotalCount:     session.TotalCount,
		CompletedCount: session.CompletedCount,
		AverageScore:   session.AverageScore,
		Status:         string(session.Status),
		StartedAt:      session.StartedAt,
		EndedAt:        session.EndedAt,
	}
}

func sessionToResponse(session *domain.TestSession, sentences []*domain.TestSentence) *dto.SessionResponse {
	byID := make(map[string]*domain.TestSentence, len(sentences))
	for _, sentence := range sentences {
		byID[sentence.ID] = sentence
	}
	ordered := make([]dto.SentenceResponse, 0, len(session.SentenceIDs))
	for _, id := range session.SentenceIDs {
		if sentence, ok := byID[id]; ok {
			ordered = append(ordered, sentenceToResponse(sentence))
		}
	}
	return &dto.SessionResponse{
		SessionSummaryResponse: summaryFromSession(session),
		Sentences:              ordered,
	}
}
