package middleware

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// Payload ceilings by content type. JSON bodies get the configured maximum,
// multipart uploads and everything else get tighter limits.
const (
	maxFormPayload  = 5 * 1024 * 1024
	maxOtherPayload = 1 * 1024 * 1024
)

const rateLimitLocalsKey = "rateLimit"

// Admission gates every public API call before business logic runs. The
// checks short-circuit in a fixed order: suspicious path, block list, burst,
// concurrency ceiling, window rate limit, payload size, body sanitization.
// A rejected request never reaches a route handler.
type Admission struct {
	limiter *RateLimiter
	guard   *AbuseGuard
	cfg     config.AdmissionConfig
	logger  *zap.Logger

	// In-flight requests on this instance. The ceiling is per-instance;
	// burst and block state is shared via the block store.
	inFlight atomic.Int64
}

// NewAdmission creates the admission gate
func NewAdmission(limiter *RateLimiter, guard *AbuseGuard, cfg config.AdmissionConfig, logger *zap.Logger) *Admission {
	return &Admission{
		limiter: limiter,
		guard:   guard,
		cfg:     cfg,
		logger:  logger,
	}
}

// InFlight returns the current number of admitted requests on this instance
func (a *Admission) InFlight() int64 {
	return a.inFlight.Load()
}

// Handler returns the admission middleware for an endpoint class
func (a *Admission) Handler(class string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !a.cfg.Enabled {
			return c.Next()
		}

		// Preflight requests bypass every check
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		clientID := c.IP()
		ctx := c.Context()

		// Scanner probe: block immediately
		if a.guard.SuspiciousPath(c.Path()) {
			if err := a.guard.Block(ctx, clientID, "suspicious path: "+c.Path()); err != nil {
				a.logger.Error("failed to record abuse block",
					zap.Error(err),
					zap.String("ip", clientID),
				)
			}
			RecordAdmissionRejection("suspicious_path")
			a.logger.Warn("blocked suspicious path probe",
				zap.String("ip", clientID),
				zap.String("path", c.Path()),
			)
			return apperrors.Forbidden("access denied")
		}

		// Block list
		blocked, reason, err := a.guard.IsBlocked(ctx, clientID)
		if err != nil {
			a.logger.Error("block list check failed", zap.Error(err), zap.String("ip", clientID))
			RecordAdmissionRejection("store_unavailable")
			return apperrors.Overloaded("").WithError(err)
		}
		if blocked {
			RecordAdmissionRejection("blocked")
			a.logger.Warn("rejected blocked client",
				zap.String("ip", clientID),
				zap.String("reason", reason),
			)
			return apperrors.Forbidden("access denied")
		}

		// Per-second burst
		ok, err := a.guard.CheckBurst(ctx, clientID)
		if err != nil {
			a.logger.Error("burst check failed", zap.Error(err), zap.String("ip", clientID))
			RecordAdmissionRejection("store_unavailable")
			return apperrors.Overloaded("").WithError(err)
		}
		if !ok {
			if err := a.guard.Block(ctx, clientID, "request burst"); err != nil {
				a.logger.Error("failed to record abuse block",
					zap.Error(err),
					zap.String("ip", clientID),
				)
			}
			RecordAdmissionRejection("burst")
			a.logger.Warn("blocked client for request burst", zap.String("ip", clientID))
			return apperrors.RateLimited()
		}

		// Concurrency ceiling. The decrement is deferred so it runs exactly
		// once per admitted request on every exit path, including panics.
		current := a.inFlight.Add(1)
		defer a.inFlight.Add(-1)
		if current > a.cfg.MaxConcurrent {
			RecordAdmissionRejection("overloaded")
			a.logger.Warn("concurrency ceiling reached",
				zap.Int64("in_flight", current),
				zap.Int64("ceiling", a.cfg.MaxConcurrent),
			)
			return apperrors.Overloaded("")
		}

		// Window rate limit. A counter-store failure denies the request:
		// unreachable never means unlimited.
		result, err := a.limiter.Check(ctx, clientID, class)
		if err != nil {
			a.logger.Error("rate limit check failed",
				zap.Error(err),
				zap.String("ip", clientID),
				zap.String("class", class),
			)
			RecordAdmissionRejection("store_unavailable")
			return apperrors.Overloaded("").WithError(err)
		}

		SetRateLimitHeaders(c, result)
		c.Locals(rateLimitLocalsKey, result)

		if !result.Allowed {
			RecordRateLimitHit(class)
			RecordAdmissionRejection("rate_limited")
			return apperrors.RateLimited()
		}

		if c.Method() != fiber.MethodGet {
			// Payload size
			if length := int64(c.Request().Header.ContentLength()); length > a.payloadCeiling(c) {
				RecordAdmissionRejection("payload_too_large")
				return apperrors.PayloadTooLarge("")
			}

			// Body sanitization
			if body := c.Body(); len(body) > 0 && isJSONRequest(c) {
				sanitized, err := SanitizeJSON(body)
				if err != nil {
					RecordAdmissionRejection("invalid_body")
					return apperrors.BadRequest("request body must be valid JSON").WithError(err)
				}
				c.Request().SetBody(sanitized)
			}
		}

		return c.Next()
	}
}

func (a *Admission) payloadCeiling(c *fiber.Ctx) int64 {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.Contains(contentType, "application/json"):
		return a.cfg.MaxPayloadSize
	case strings.Contains(contentType, "multipart/form-data"):
		return maxFormPayload
	default:
		return maxOtherPayload
	}
}

func isJSONRequest(c *fiber.Ctx) bool {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	return contentType == "" || strings.Contains(contentType, "application/json")
}

// SetRateLimitHeaders writes the X-RateLimit headers for a check result
func SetRateLimitHeaders(c *fiber.Ctx, result RateLimitResult) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
}

// GetRateLimitResult returns the rate-limit state recorded by admission for
// this request, if any
func GetRateLimitResult(c *fiber.Ctx) (RateLimitResult, bool) {
	result, ok := c.Locals(rateLimitLocalsKey).(RateLimitResult)
	return result, ok
}
