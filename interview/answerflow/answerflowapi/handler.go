package answerflowapi

import (
	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/internal/cache"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/interview/answerflow/answerflowsrv"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for answer workflow operations
type Handlers struct {
	engine    *answerflowsrv.Engine
	snapshots answerflow.SnapshotStore
	cache     *cache.TwoTier
	router    *llmrouter.Router
}

// NewHandlers creates a new answer workflow handlers instance
func NewHandlers(engine *answerflowsrv.Engine, snapshots answerflow.SnapshotStore, twoTier *cache.TwoTier, router *llmrouter.Router) *Handlers {
	return &Handlers{
		engine:    engine,
		snapshots: snapshots,
		cache:     twoTier,
		router:    router,
	}
}

// StartWorkflow starts the answer workflow for one question. With
// ?detached=true the workflow runs in the background and only the
// session ID is returned; otherwise the call blocks until the workflow
// completes or pauses for input.
// POST /api/answerflow/start
func (h *Handlers) StartWorkflow(c *fiber.Ctx) error {
	var req answerflow.StartRequest
	if err := c.BodyParser(&req); err != nil {
		return answerflow.ErrValidation("invalid request body").WithDetail("parse_error", err.Error())
	}

	state := req.ToState()

	if c.QueryBool("detached") {
		if err := state.Validate(); err != nil {
			return err
		}
		sessionID := h.engine.RunDetached(state)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"session_id":  sessionID,
			"question_id": state.QuestionID,
		})
	}

	result, err := h.engine.Run(c.Context(), state)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ResumeWorkflow continues a paused workflow with freshly collected input
// POST /api/answerflow/resume
func (h *Handlers) ResumeWorkflow(c *fiber.Ctx) error {
	var req answerflow.ResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return answerflow.ErrValidation("invalid request body").WithDetail("parse_error", err.Error())
	}
	if req.SessionID.IsEmpty() || req.QuestionID.IsEmpty() {
		return answerflow.ErrValidation("session_id and question_id are required")
	}

	result, err := h.engine.Resume(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ListSessionSnapshots summarizes every stored snapshot for a session
// GET /api/answerflow/sessions/:sessionId
func (h *Handlers) ListSessionSnapshots(c *fiber.Ctx) error {
	sessionID := kernel.SessionID(c.Params("sessionId"))
	if sessionID.IsEmpty() {
		return answerflow.ErrValidation("session_id is required")
	}

	questionIDs, err := h.snapshots.List(c.Context(), sessionID)
	if err != nil {
		return err
	}

	summaries := make([]answerflow.StateSummary, 0, len(questionIDs))
	for _, qid := range questionIDs {
		state, err := h.snapshots.Load(c.Context(), sessionID, qid)
		if err != nil {
			// Expired between List and Load; skip it
			continue
		}
		summaries = append(summaries, state.Summary())
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"snapshots":  summaries,
		"total":      len(summaries),
	})
}

// GetSnapshot returns the full stored state for one question's workflow
// GET /api/answerflow/sessions/:sessionId/questions/:questionId
func (h *Handlers) GetSnapshot(c *fiber.Ctx) error {
	sessionID := kernel.SessionID(c.Params("sessionId"))
	questionID := kernel.QuestionID(c.Params("questionId"))
	if sessionID.IsEmpty() || questionID.IsEmpty() {
		return answerflow.ErrValidation("session_id and question_id are required")
	}

	state, err := h.snapshots.Load(c.Context(), sessionID, questionID)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// DeleteSnapshot discards one question's stored workflow state
// DELETE /api/answerflow/sessions/:sessionId/questions/:questionId
func (h *Handlers) DeleteSnapshot(c *fiber.Ctx) error {
	sessionID := kernel.SessionID(c.Params("sessionId"))
	questionID := kernel.QuestionID(c.Params("questionId"))
	if sessionID.IsEmpty() || questionID.IsEmpty() {
		return answerflow.ErrValidation("session_id and question_id are required")
	}

	removed, err := h.snapshots.Delete(c.Context(), sessionID, questionID)
	if err != nil {
		return err
	}
	if !removed {
		return answerflow.ErrSnapshotNotFound().
			WithDetail("session_id", sessionID.String()).
			WithDetail("question_id", questionID.String())
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// GetStats reports cache, prompt reuse and provider breaker counters
// GET /api/answerflow/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	resp := fiber.Map{}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats()
	}
	if h.router != nil {
		resp["prompt_cache"] = h.router.PromptCacheStats()
		resp["breakers"] = h.router.BreakerStats()
	}
	return c.JSON(resp)
}

// ClearCache resets the two-tier cache, optionally scoped to a prefix
// POST /api/answerflow/cache/clear
func (h *Handlers) ClearCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.JSON(fiber.Map{"message": "no cache configured"})
	}
	prefix := c.Query("prefix")
	h.cache.Clear(c.Context(), prefix)
	return c.JSON(fiber.Map{
		"message": "cache cleared",
		"prefix":  prefix,
	})
}

// RegisterRoutes registers all answer workflow routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/answerflow")

	api.Post("/start", handlers.StartWorkflow)
	api.Post("/resume", handlers.ResumeWorkflow)

	api.Get("/sessions/:sessionId", handlers.ListSessionSnapshots)
	api.Get("/sessions/:sessionId/questions/:questionId", handlers.GetSnapshot)
	api.Delete("/sessions/:sessionId/questions/:questionId", handlers.DeleteSnapshot)

	api.Get("/stats", handlers.GetStats)
	api.Post("/cache/clear", handlers.ClearCache)
}
