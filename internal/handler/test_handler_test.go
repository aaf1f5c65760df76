package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/handler"
	"speakcheck/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

// MockTestService
type MockTestService struct {
	StartSessionFunc      func(ctx context.Context, userID, userName string, req *dto.StartTestRequest) (*dto.SessionResponse, error)
	EvaluateFunc          func(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error)
	GetSessionFunc        func(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error)
	GetSessionAnswersFunc func(ctx context.Context, userID, sessionID string) ([]dto.AnswerResponse, error)
	AbandonSessionFunc    func(ctx context.Context, userID, sessionID string) (*dto.SessionSummaryResponse, error)
}

func (m *MockTestService) StartSession(ctx context.Context, userID, userName string, req *dto.StartTestRequest) (*dto.SessionResponse, error) {
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(ctx, userID, userName, req)
	}
	panic("MockTestService.StartSessionFunc not implemented")
}
func (m *MockTestService) Evaluate(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, userID, sessionID, req)
	}
	panic("MockTestService.EvaluateFunc not implemented")
}
func (m *MockTestService) GetSession(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, userID, sessionID)
	}
	panic("MockTestService.GetSessionFunc not implemented")
}
func (m *MockTestService) GetSessionAnswers(ctx context.Context, userID, sessionID string) ([]dto.AnswerResponse, error) {
	if m.GetSessionAnswersFunc != nil {
		return m.GetSessionAnswersFunc(ctx, userID, sessionID)
	}
	panic("MockTestService.GetSessionAnswersFunc not implemented")
}
func (m *MockTestService) AbandonSession(ctx context.Context, userID, sessionID string) (*dto.SessionSummaryResponse, error) {
	if m.AbandonSessionFunc != nil {
		return m.AbandonSessionFunc(ctx, userID, sessionID)
	}
	panic("MockTestService.AbandonSessionFunc not implemented")
}

// MockUserService
type MockUserService struct {
	GetProfileFunc      func(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	GetUserSessionsFunc func(ctx context.Context, userID string, limit, offset int) (*dto.UserSessionsResponse, error)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	panic("MockUserService.GetProfileFunc not implemented")
}
func (m *MockUserService) GetUserSessions(ctx context.Context, userID string, limit, offset int) (*dto.UserSessionsResponse, error) {
	if m.GetUserSessionsFunc != nil {
		return m.GetUserSessionsFunc(ctx, userID, limit, offset)
	}
	panic("MockUserService.GetUserSessionsFunc not implemented")
}

// --- Test App Setup ---

func authAs(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		return c.Next()
	}
}

func setupTestApp(testSvc *MockTestService, userSvc *MockUserService, userID string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := handler.NewTestHandler(testSvc, userSvc)

	api := app.Group("/api", authAs(userID))
	api.Post("/tests", h.StartTest)
	api.Post("/tests/:id/answers", h.SubmitAnswer)
	api.Get("/tests/:id", h.GetTest)
	api.Get("/tests/:id/answers", h.GetTestAnswers)
	api.Post("/tests/:id/abandon", h.AbandonTest)
	return app
}

func decodeBody(t *testing.T, resp io.Reader, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp).Decode(out))
}

// --- Tests ---

func TestStartTest(t *testing.T) {
	testSvc := &MockTestService{
		StartSessionFunc: func(ctx context.Context, userID, userName string, req *dto.StartTestRequest) (*dto.SessionResponse, error) {
			assert.Equal(t, "user1", userID)
			assert.Equal(t, "Mina", userName)
			return &dto.SessionResponse{
				SessionSummaryResponse: dto.SessionSummaryResponse{
					ID:         "session1",
					TotalCount: 2,
					Status:     "in_progress",
				},
			}, nil
		},
	}
	userSvc := &MockUserService{
		GetProfileFunc: func(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
			return &dto.UserProfileResponse{ID: userID, Name: "Mina"}, nil
		},
	}
	app := setupTestApp(testSvc, userSvc, "user1")

	req := httptest.NewRequest("POST", "/api/tests", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.SessionResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, "session1", body.ID)
	assert.Equal(t, 2, body.TotalCount)
}

func TestSubmitAnswer(t *testing.T) {
	testSvc := &MockTestService{
		EvaluateFunc: func(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
			assert.Equal(t, "session1", sessionID)
			assert.Equal(t, "s1", req.SentenceID)
			return &dto.EvaluateResponse{
				Answer:   dto.AnswerResponse{ID: "a1", OverallScore: 0.8},
				Progress: dto.ProgressResponse{CompletedCount: 1, TotalCount: 2, AverageScore: 0.8, Status: "in_progress"},
			}, nil
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	payload := `{"sentence_id":"s1","audio_base64":"QUFB","time_spent_seconds":9}`
	req := httptest.NewRequest("POST", "/api/tests/session1/answers", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.EvaluateResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, "a1", body.Answer.ID)
	assert.Equal(t, 1, body.Progress.CompletedCount)
}

func TestSubmitAnswer_InvalidSessionStateMapsTo409(t *testing.T) {
	testSvc := &MockTestService{
		EvaluateFunc: func(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
			return nil, domain.NewInvalidStateError(sessionID, domain.SessionCompleted)
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("POST", "/api/tests/session1/answers", bytes.NewBufferString(`{"sentence_id":"s1","audio_base64":"QUFB"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body middleware.ErrorResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, string(domain.CodeInvalidSessionState), body.Code)
}

func TestSubmitAnswer_ProviderErrorMapsTo502(t *testing.T) {
	testSvc := &MockTestService{
		EvaluateFunc: func(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
			return nil, domain.WrapProviderError(domain.NewProviderCodeError(domain.StageScore, 3))
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("POST", "/api/tests/session1/answers", bytes.NewBufferString(`{"sentence_id":"s1","audio_base64":"QUFB"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestSubmitAnswer_ModelUnavailableMapsTo503(t *testing.T) {
	testSvc := &MockTestService{
		EvaluateFunc: func(ctx context.Context, userID, sessionID string, req *dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
			return nil, domain.NewModelUnavailableError("s1", domain.NewProviderCodeError(domain.StageBuildModel, 4))
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("POST", "/api/tests/session1/answers", bytes.NewBufferString(`{"sentence_id":"s1","audio_base64":"QUFB"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetTest_NotFoundMapsTo404(t *testing.T) {
	testSvc := &MockTestService{
		GetSessionFunc: func(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
			return nil, domain.NewSessionNotFoundError(sessionID)
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("GET", "/api/tests/ghost", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetTestAnswers(t *testing.T) {
	testSvc := &MockTestService{
		GetSessionAnswersFunc: func(ctx context.Context, userID, sessionID string) ([]dto.AnswerResponse, error) {
			return []dto.AnswerResponse{{ID: "a1", OverallScore: 0.8}}, nil
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("GET", "/api/tests/session1/answers", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Answers []dto.AnswerResponse `json:"answers"`
	}
	decodeBody(t, resp.Body, &body)
	require.Len(t, body.Answers, 1)
	assert.Equal(t, "a1", body.Answers[0].ID)
}

func TestAbandonTest(t *testing.T) {
	testSvc := &MockTestService{
		AbandonSessionFunc: func(ctx context.Context, userID, sessionID string) (*dto.SessionSummaryResponse, error) {
			return &dto.SessionSummaryResponse{ID: sessionID, Status: "abandoned"}, nil
		},
	}
	app := setupTestApp(testSvc, &MockUserService{}, "user1")

	req := httptest.NewRequest("POST", "/api/tests/session1/abandon", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.SessionSummaryResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, "abandoned", body.Status)
}
