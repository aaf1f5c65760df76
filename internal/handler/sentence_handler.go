package handler

import (
	"speakcheck/internal/domain"
	"speakcheck/internal/dto"
	"speakcheck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SentenceHandler handles sentence catalog HTTP requests.
type SentenceHandler struct {
	sentenceService service.SentenceService
}

// NewSentenceHandler creates a new SentenceHandler instance.
func NewSentenceHandler(sentenceService service.SentenceService) *SentenceHandler {
	return &SentenceHandler{sentenceService: sentenceService}
}

// ListSentences handles GET /api/sentences
func (h *SentenceHandler) ListSentences(c *fiber.Ctx) error {
	sentences, err := h.sentenceService.GetAllSentences(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sentences": sentences})
}

// CreateSentence handles POST /api/admin/sentences
func (h *SentenceHandler) CreateSentence(c *fiber.Ctx) error {
	var req dto.AdminSentenceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.sentenceService.CreateSentence(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// PrewarmModel handles POST /api/admin/sentences/:id/model
func (h *SentenceHandler) PrewarmModel(c *fiber.Ctx) error {
	resp, err := h.sentenceService.PrewarmModel(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RegenerateModel handles PUT /api/admin/sentences/:id/model
func (h *SentenceHandler) RegenerateModel(c *fiber.Ctx) error {
	resp, err := h.sentenceService.RegenerateModel(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
