package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all HTTP routes. Health and metrics stay outside
// the admission gate; every /api group passes through it with its endpoint
// class.
func registerRoutes(app *fiber.App, deps *Dependencies) {
	deps.HealthHandler.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	deps.AuthHandler.RegisterRoutes(app, deps.Admission, deps.AuthMiddleware)
	deps.OrganizationsHandler.RegisterRoutes(app, deps.Admission, deps.AuthMiddleware)
	deps.ProjectsHandler.RegisterRoutes(app, deps.Admission, deps.AuthMiddleware)
	deps.ImagesHandler.RegisterRoutes(app, deps.Admission, deps.AuthMiddleware)
}
