package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"speakcheck/internal/domain"
	"speakcheck/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const catalogKey = "speakcheck:sentence:catalog:all"

type sentenceFixture struct {
	repo      *MockSentenceRepository
	refModels *MockReferenceModelService
	cache     *MockCache
	svc       SentenceService
}

func newSentenceFixture() *sentenceFixture {
	f := &sentenceFixture{
		repo:      new(MockSentenceRepository),
		refModels: new(MockReferenceModelService),
		cache:     new(MockCache),
	}
	f.svc = NewSentenceService(f.repo, f.refModels, f.cache, 10*time.Minute)
	return f
}

func TestSentenceService_GetAllSentences(t *testing.T) {
	f := newSentenceFixture()

	withModel := fixtureSentence("s1", "hello world")
	withoutModel := &domain.TestSentence{ID: "s2", Text: "good morning", DisplayOrder: 2}
	f.cache.On("Get", mock.Anything, catalogKey).Return("", domain.ErrCacheMiss)
	f.repo.On("GetAllSentences", mock.Anything).Return([]*domain.TestSentence{withModel, withoutModel}, nil)
	f.cache.On("Set", mock.Anything, catalogKey, mock.AnythingOfType("string"), 10*time.Minute).Return(nil)

	sentences, err := f.svc.GetAllSentences(context.Background())
	require.NoError(t, err)
	require.Len(t, sentences, 2)
	assert.True(t, sentences[0].ModelReady)
	assert.False(t, sentences[1].ModelReady)
	f.cache.AssertExpectations(t)
}

func TestSentenceService_GetAllSentences_ServedFromCache(t *testing.T) {
	f := newSentenceFixture()

	cached := []dto.SentenceResponse{{ID: "s1", Text: "hello world", ModelReady: true}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	f.cache.On("Get", mock.Anything, catalogKey).Return(string(payload), nil)

	sentences, err := f.svc.GetAllSentences(context.Background())
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Equal(t, "s1", sentences[0].ID)
	f.repo.AssertNotCalled(t, "GetAllSentences", mock.Anything)
}

func TestSentenceService_GetAllSentences_CorruptCacheFallsBack(t *testing.T) {
	f := newSentenceFixture()

	f.cache.On("Get", mock.Anything, catalogKey).Return("{not json", nil)
	f.repo.On("GetAllSentences", mock.Anything).Return([]*domain.TestSentence{fixtureSentence("s1", "hello world")}, nil)
	f.cache.On("Set", mock.Anything, catalogKey, mock.AnythingOfType("string"), 10*time.Minute).Return(nil)

	sentences, err := f.svc.GetAllSentences(context.Background())
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	f.repo.AssertExpectations(t)
}

func TestSentenceService_CreateSentence(t *testing.T) {
	f := newSentenceFixture()

	f.repo.On("SaveSentence", mock.Anything, mock.AnythingOfType("*domain.TestSentence")).Return(nil)
	f.cache.On("Delete", mock.Anything, catalogKey).Return(nil)

	resp, err := f.svc.CreateSentence(context.Background(), &dto.AdminSentenceRequest{
		DisplayOrder: 1,
		Text:         "hello world",
		Difficulty:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.Text)
	assert.False(t, resp.ModelReady)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestSentenceService_CreateSentence_Invalid(t *testing.T) {
	f := newSentenceFixture()

	_, err := f.svc.CreateSentence(context.Background(), &dto.AdminSentenceRequest{DisplayOrder: 1})
	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	f.repo.AssertNotCalled(t, "SaveSentence", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSentenceService_PrewarmModel(t *testing.T) {
	f := newSentenceFixture()

	model := completeModel()
	f.refModels.On("EnsureModel", mock.Anything, "s1").Return(&model, nil)
	f.cache.On("Delete", mock.Anything, catalogKey).Return(nil)
	f.repo.On("GetSentenceByID", mock.Anything, "s1").Return(fixtureSentence("s1", "hello world"), nil)

	resp, err := f.svc.PrewarmModel(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, resp.ModelReady)
	f.refModels.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestSentenceService_PrewarmModel_ProviderFailureMapsToDomainError(t *testing.T) {
	f := newSentenceFixture()

	f.refModels.On("EnsureModel", mock.Anything, "s1").
		Return(nil, domain.NewProviderCodeError(domain.StageDecompose, 7))

	_, err := f.svc.PrewarmModel(context.Background(), "s1")
	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeProviderError, derr.Code)
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSentenceService_RegenerateModel(t *testing.T) {
	f := newSentenceFixture()

	model := completeModel()
	f.refModels.On("Regenerate", mock.Anything, "s1").Return(&model, nil)
	f.cache.On("Delete", mock.Anything, catalogKey).Return(nil)
	f.repo.On("GetSentenceByID", mock.Anything, "s1").Return(fixtureSentence("s1", "hello world"), nil)

	resp, err := f.svc.RegenerateModel(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, resp.ModelReady)
	f.refModels.AssertExpectations(t)
}
