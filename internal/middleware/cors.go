package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	// AllowOrigins is a list of allowed origins; ["*"] reflects any origin
	AllowOrigins []string
	// AllowMethods is a list of allowed methods
	AllowMethods []string
	// AllowHeaders is a list of allowed headers
	AllowHeaders []string
	// ExposeHeaders is a list of headers to expose
	ExposeHeaders []string
	// AllowCredentials indicates whether credentials are allowed
	AllowCredentials bool
	// MaxAge indicates how long preflight results can be cached, in seconds
	MaxAge int
}

// DefaultCORSConfig returns default CORS config
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodOptions,
		},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}
}

// ProductionCORSConfig returns CORS config restricted to specific origins
func ProductionCORSConfig(allowedOrigins []string) CORSConfig {
	config := DefaultCORSConfig()
	config.AllowOrigins = allowedOrigins
	return config
}

// CORS creates a CORS middleware. Every response, success or failure, carries
// the CORS headers; preflight requests are answered with an empty 204.
func CORS(config ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")

	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")

		allowOrigin := resolveOrigin(cfg, origin)
		if allowOrigin == "" && origin != "" {
			// Origin not allowed: no CORS headers, let the browser refuse
			return c.Next()
		}
		if allowOrigin == "" {
			allowOrigin = "*"
		}

		c.Set("Access-Control-Allow-Origin", allowOrigin)

		if cfg.AllowCredentials && allowOrigin != "*" {
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		if exposeHeaders != "" {
			c.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Method() == fiber.MethodOptions {
			c.Set("Access-Control-Allow-Methods", allowMethods)
			c.Set("Access-Control-Allow-Headers", allowHeaders)

			if cfg.MaxAge > 0 {
				c.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}

			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}

func resolveOrigin(cfg CORSConfig, origin string) string {
	if len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*" {
		if cfg.AllowCredentials && origin != "" {
			// Can't use * with credentials, so reflect the origin
			return origin
		}
		return "*"
	}

	for _, o := range cfg.AllowOrigins {
		if o == origin || o == "*" {
			return origin
		}
		// Support wildcard subdomains (e.g., *.example.com)
		if strings.HasPrefix(o, "*.") {
			if strings.HasSuffix(origin, o[1:]) {
				return origin
			}
		}
	}

	return ""
}
