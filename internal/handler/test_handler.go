package handler

import (
	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/middleware"
	"speakcheck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TestHandler handles test-session HTTP requests.
type TestHandler struct {
	testService service.TestService
	userService service.UserService
}

// NewTestHandler creates a new TestHandler instance.
func NewTestHandler(testService service.TestService, userService service.UserService) *TestHandler {
	return &TestHandler{testService: testService, userService: userService}
}

func currentUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", domain.NewUnauthorizedError("authentication required")
	}
	return userID, nil
}

// StartTest handles POST /api/tests
func (h *TestHandler) StartTest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.StartTestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}

	// Snapshot the display name onto the session at start time.
	userName := ""
	if profile, err := h.userService.GetProfile(c.Context(), userID); err == nil {
		userName = profile.Name
	}

	resp, err := h.testService.StartSession(c.Context(), userID, userName, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SubmitAnswer handles POST /api/tests/:id/answers
func (h *TestHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	sessionID := c.Params("id")

	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.testService.Evaluate(c.Context(), userID, sessionID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetTest handles GET /api/tests/:id
func (h *TestHandler) GetTest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.testService.GetSession(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetTestAnswers handles GET /api/tests/:id/answers
func (h *TestHandler) GetTestAnswers(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	answers, err := h.testService.GetSessionAnswers(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"answers": answers})
}

// AbandonTest handles POST /api/tests/:id/abandon
func (h *TestHandler) AbandonTest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.testService.AbandonSession(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
