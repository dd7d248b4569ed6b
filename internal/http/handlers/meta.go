package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vtracer-api/internal/domain"
)

const (
	// ServiceName is reported by the health endpoint.
	ServiceName = "vtracer-api"
	// Version is the API version reported by the root endpoint.
	Version = "1.0.0"

	PathRoot    = "/"
	PathHealth  = "/api/health"
	PathModels  = "/api/models"
	PathConvert = "/api/convert"
)

// Root returns service metadata and the endpoint map.
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":     "Welcome to the VTracer API!",
		"description": "Convert raster images to SVG using VTracer",
		"version":     Version,
		"endpoints": fiber.Map{
			"health":  PathHealth,
			"models":  PathModels,
			"convert": PathConvert,
		},
	})
}

// Health is the liveness payload. It never depends on request history.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": ServiceName})
}

// Models lists the option values a client may pass to /api/convert.
func Models(c *fiber.Ctx) error {
	return c.JSON(domain.ModelCatalog())
}
