package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fanfie/fanfie-api/internal/domain"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// ContextKey type for context keys
type ContextKey string

const (
	// ContextKeyUserID holds the authenticated user's ID
	ContextKeyUserID ContextKey = "userID"
)

// TokenValidator validates a session token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*domain.JWTClaims, error)
}

// AuthMiddleware handles session authentication. Tokens are accepted from
// the session cookie or an Authorization bearer header.
type AuthMiddleware struct {
	validator  TokenValidator
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(validator TokenValidator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		validator:  validator,
		cookieName: cookieName,
	}
}

// RequireAuth validates the session token and stores the user ID in context
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.extractToken(c)
		if token == "" {
			return apperrors.Unauthorized("authentication required")
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			return apperrors.Unauthorized("invalid or expired session").WithError(err)
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return apperrors.Unauthorized("invalid session")
		}

		c.Locals(string(ContextKeyUserID), userID)

		return c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie
	}

	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

// GetUserID gets the authenticated user ID from context
func GetUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(string(ContextKeyUserID)).(uuid.UUID)
	return userID, ok
}
