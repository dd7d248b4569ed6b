package server

import (
	"github.com/gofiber/fiber/v2"

	"vtracer-api/internal/config"
	"vtracer-api/internal/http/handlers"
	"vtracer-api/internal/http/middleware"
)

// Deps carries what the HTTP layer needs from the rest of the process.
type Deps struct {
	Config    config.Config
	Converter handlers.Converter
}

// New creates and configures the Fiber app.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               deps.Config.Server.Prefork,
		BodyLimit:             deps.Config.Server.BodyLimitBytes,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler,
	})

	middleware.Register(app, deps.Config)
	RegisterRoutes(app, deps)

	// Unmatched routes still answer with a JSON body.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// RegisterRoutes mounts all route handlers to the app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	convert := handlers.NewConvertHandler(deps.Converter)

	app.Get(handlers.PathRoot, handlers.Root)
	app.Get(handlers.PathHealth, handlers.Health)
	app.Get(handlers.PathModels, handlers.Models)
	app.Post(handlers.PathConvert, convert.Handle)
}
