// Package mockgateway is a local stand-in for the DataGateway API. It serves
// the four client endpoints from a small canned Mortgage-Lending dataset.
package mockgateway

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/peekdata/datagateway-go/internal/config"
	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/pkg/datagateway"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, dataset *Dataset, cfg config.MockConfig) *Handler {
	h := NewHandler(dataset)

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	logCfg := logging.DefaultMiddlewareConfig()
	logCfg.AdditionalFields = func(c *fiber.Ctx) []interface{} {
		return []interface{}{"bytes", len(c.Response().Body())}
	}
	app.Use(logging.FiberMiddleware(logger, logCfg))

	// Health check (no auth required)
	app.Get(datagateway.PathHealthCheck, h.Health)

	auth := APIKeyAuth(logger, cfg.APIKeys)
	app.Post(datagateway.PathSelect, auth, h.Select)
	app.Post(datagateway.PathData, auth, h.Data)
	app.Post(datagateway.PathCSV, auth, h.File)

	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app serving dataset
func New(logger *logging.Logger, dataset *Dataset, cfg config.MockConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "DataGateway Mock",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	Setup(app, logger, dataset, cfg)

	return app
}
