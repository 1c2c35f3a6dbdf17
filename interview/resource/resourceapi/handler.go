package resourceapi

import (
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/interview/resource/resourcesrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for learning-resource discovery
type Handlers struct {
	service *resourcesrv.Service
}

func NewHandlers(service *resourcesrv.Service) *Handlers {
	return &Handlers{service: service}
}

// SearchResources finds learning resources for a skill gap
// POST /api/resources/search
func (h *Handlers) SearchResources(c *fiber.Ctx) error {
	var req resource.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return resource.ErrRegistry.New(resource.CodeEmptyGapTitle).WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Search(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// MatchResources searches the curated catalog only, without web fallback
// POST /api/resources/match
func (h *Handlers) MatchResources(c *fiber.Ctx) error {
	var req resource.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return resource.ErrRegistry.New(resource.CodeEmptyGapTitle).WithDetail("parse_error", err.Error())
	}
	req.Mode = resource.ModeLocalOnly

	resp, err := h.service.Search(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// AddResource stores a curated resource in the catalog
// POST /api/resources
func (h *Handlers) AddResource(c *fiber.Ctx) error {
	var res resource.LearningResource
	if err := c.BodyParser(&res); err != nil {
		return resource.ErrRegistry.New(resource.CodeEmptyGapTitle).WithDetail("parse_error", err.Error())
	}

	if err := h.service.AddToCatalog(c.Context(), res); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// RegisterRoutes registers all resource routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/resources")

	api.Post("/search", handlers.SearchResources)
	api.Post("/match", handlers.MatchResources)
	api.Post("/", handlers.AddResource)
}
