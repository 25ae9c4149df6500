package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// InitSentry initializes the Sentry SDK. A missing DSN disables reporting.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return nil
}

// FlushSentry flushes any buffered events to Sentry
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

func requestHub(c *fiber.Ctx) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("request_id", GetRequestID(c))
	hub.Scope().SetExtra("path", c.Path())
	hub.Scope().SetExtra("method", c.Method())
	return hub
}

// CaptureError reports an error to Sentry with request context
func CaptureError(c *fiber.Ctx, err error) {
	requestHub(c).CaptureException(err)
}

// Recover converts panics into internal errors for the application error
// handler, logging the stack and reporting to Sentry when enabled
func Recover(logger *zap.Logger, sentryEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}

			logger.Error("panic recovered",
				zap.Error(panicErr),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.String("request_id", GetRequestID(c)),
				zap.String("stack", string(debug.Stack())),
			)

			if sentryEnabled {
				hub := requestHub(c)
				hub.Scope().SetLevel(sentry.LevelFatal)
				hub.RecoverWithContext(c.Context(), r)
				hub.Flush(2 * time.Second)
			}

			err = apperrors.Internal("an unexpected error occurred").WithError(panicErr)
		}()

		return c.Next()
	}
}
