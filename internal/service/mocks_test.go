package service

import (
	"context"
	"time"

	"speakcheck/internal/domain"
	"speakcheck/internal/dto"

	"github.com/stretchr/testify/mock"
)

// --- MockSentenceRepository ---
type MockSentenceRepository struct {
	mock.Mock
}

func (m *MockSentenceRepository) GetSentenceByID(ctx context.Context, id string) (*domain.TestSentence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestSentence), args.Error(1)
}

func (m *MockSentenceRepository) GetSentencesByIDs(ctx context.Context, ids []string) ([]*domain.TestSentence, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TestSentence), args.Error(1)
}

func (m *MockSentenceRepository) GetRandomSentences(ctx context.Context, count int) ([]*domain.TestSentence, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TestSentence), args.Error(1)
}

func (m *MockSentenceRepository) GetAllSentences(ctx context.Context) ([]*domain.TestSentence, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TestSentence), args.Error(1)
}

func (m *MockSentenceRepository) SaveSentence(ctx context.Context, sentence *domain.TestSentence) error {
	args := m.Called(ctx, sentence)
	return args.Error(0)
}

func (m *MockSentenceRepository) UpdateReferenceModel(ctx context.Context, sentenceID string, model domain.ReferenceModel) error {
	args := m.Called(ctx, sentenceID, model)
	return args.Error(0)
}

func (m *MockSentenceRepository) UpdateModelErrorCode(ctx context.Context, sentenceID string, errorCode int) error {
	args := m.Called(ctx, sentenceID, errorCode)
	return args.Error(0)
}

// --- MockSessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, session *domain.TestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionByID(ctx context.Context, id string) (*domain.TestSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateSession(ctx context.Context, session *domain.TestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionsByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.TestSession, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.TestSession), args.Int(1), args.Error(2)
}

// --- MockAnswerRepository ---
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) CreateAnswer(ctx context.Context, answer *domain.TestAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetAnswersBySessionID(ctx context.Context, sessionID string) ([]domain.TestAnswer, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TestAnswer), args.Error(1)
}

func (m *MockAnswerRepository) GetScoresBySessionID(ctx context.Context, sessionID string) ([]float64, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- MockScoringProvider ---
type MockScoringProvider struct {
	mock.Mock
}

func (m *MockScoringProvider) Decompose(ctx context.Context, sentenceID, text string) (*domain.Decomposition, error) {
	args := m.Called(ctx, sentenceID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Decomposition), args.Error(1)
}

func (m *MockScoringProvider) BuildModel(ctx context.Context, sentenceID, text string, dec *domain.Decomposition) (*domain.ReferenceModel, error) {
	args := m.Called(ctx, sentenceID, text, dec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceModel), args.Error(1)
}

func (m *MockScoringProvider) Score(ctx context.Context, sentenceID, text string, model *domain.ReferenceModel, audioBase64 string) (*domain.ScoreResult, error) {
	args := m.Called(ctx, sentenceID, text, model, audioBase64)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreResult), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) HGet(ctx context.Context, key, field string) (string, error) {
	args := m.Called(ctx, key, field)
	return args.String(0), args.Error(1)
}

func (m *MockCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCache) HSet(ctx context.Context, key string, field string, value string) error {
	args := m.Called(ctx, key, field, value)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

// --- MockTransactionManager ---
// Runs the given function directly; there is no real transaction in unit tests.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// --- MockProgressCache ---
type MockProgressCache struct {
	mock.Mock
}

func (m *MockProgressCache) GetProgress(ctx context.Context, sessionID string) (*dto.ProgressResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProgressResponse), args.Error(1)
}

func (m *MockProgressCache) PutProgress(ctx context.Context, session *domain.TestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockProgressCache) Invalidate(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- MockReferenceModelService ---
type MockReferenceModelService struct {
	mock.Mock
}

func (m *MockReferenceModelService) EnsureModel(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error) {
	args := m.Called(ctx, sentenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceModel), args.Error(1)
}

func (m *MockReferenceModelService) Regenerate(ctx context.Context, sentenceID string) (*domain.ReferenceModel, error) {
	args := m.Called(ctx, sentenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceModel), args.Error(1)
}
