package questionapi

import (
	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for question generation
type Handlers struct {
	service question.BatchGenerator
}

// NewHandlers creates a new question handlers instance
func NewHandlers(service question.BatchGenerator) *Handlers {
	return &Handlers{
		service: service,
	}
}

// GenerateBatch generates one interview question per gap. Per-gap model
// failures produce placeholder questions rather than failing the batch.
// POST /api/questions/batch
func (h *Handlers) GenerateBatch(c *fiber.Ctx) error {
	var req question.GenerateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return question.ErrInvalidBatchRequest().WithDetail("parse_error", err.Error())
	}
	if err := req.Validate(); err != nil {
		return err
	}

	questions := h.service.GenerateBatch(
		c.Context(),
		req.Gaps,
		req.ParsedCV,
		req.ParsedJD,
		req.Language.OrDefault(),
	)

	failed := 0
	for _, q := range questions {
		if q.Error != "" {
			failed++
		}
	}

	return c.JSON(question.GenerateBatchResponse{
		Questions: questions,
		Total:     len(questions),
		Failed:    failed,
	})
}

// RegisterRoutes registers all question routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/questions")

	api.Post("/batch", handlers.GenerateBatch)
}
