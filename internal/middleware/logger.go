package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// probePaths are excluded from request logging and metrics; probes fire every
// few seconds and would drown out real traffic.
var probePaths = map[string]struct{}{
	"/health":  {},
	"/healthz": {},
	"/livez":   {},
	"/readyz":  {},
	"/metrics": {},
}

func isProbePath(path string) bool {
	_, ok := probePaths[path]
	return ok
}

// Logger creates the request logging middleware. Level follows the response
// status: 5xx at error, 4xx at warn, everything else at info.
func Logger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isProbePath(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		if userID, ok := GetUserID(c); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch status := c.Response().StatusCode(); {
		case status >= fiber.StatusInternalServerError:
			log.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}

		return err
	}
}
