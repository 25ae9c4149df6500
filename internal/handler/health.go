package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves the probe endpoints. Both backing stores are checked
// directly rather than through the repositories so a probe never depends on
// application wiring.
type HealthHandler struct {
	postgres  *pgxpool.Pool
	redis     *redis.Client
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(postgres *pgxpool.Pool, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{
		postgres:  postgres,
		redis:     redisClient,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) pingChecks(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"postgres": "healthy", "redis": "healthy"}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		checks["postgres"] = "unhealthy: " + err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		healthy = false
	}

	return checks, healthy
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.pingChecks(ctx)

	status, code := "healthy", fiber.StatusOK
	if !healthy {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"version":   h.version,
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// Liveness handles GET /livez
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks, healthy := h.pingChecks(ctx)
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"checks": checks,
		})
	}

	return c.JSON(fiber.Map{"status": "ready"})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}

// RegisterRoutes registers health check routes. These bypass admission so
// probes keep working when the API is saturated.
func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/healthz", h.Health)
	app.Get("/livez", h.Liveness)
	app.Get("/readyz", h.Readiness)
	app.Get("/version", h.Version)
}
