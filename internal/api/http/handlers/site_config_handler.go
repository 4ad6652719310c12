package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/console-client/internal/api/dto"
)

// SiteConfigHandler serves the public site configuration.
type SiteConfigHandler struct {
	config dto.SiteConfigResponse
}

// NewSiteConfigHandler constructs handler.
func NewSiteConfigHandler(config dto.SiteConfigResponse) *SiteConfigHandler {
	return &SiteConfigHandler{config: config}
}

// Get handles GET /api/public/site-config.
func (h *SiteConfigHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.config)
}
