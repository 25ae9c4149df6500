package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/dto"
	"github.com/fanfie/fanfie-api/internal/middleware"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
	"github.com/fanfie/fanfie-api/internal/service"
)

// AuthHandler handles registration, login, and session endpoints
type AuthHandler struct {
	authService *service.AuthService
	cfg         config.JWTConfig
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, cfg config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result)

	return Respond(c, fiber.StatusCreated, authResponse(result))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result)

	return Respond(c, fiber.StatusOK, authResponse(result))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return Respond(c, fiber.StatusOK, fiber.Map{"loggedOut": true})
}

// Me handles GET /api/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, result *domain.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    result.AccessToken,
		Expires:  result.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func authResponse(result *domain.AuthResult) fiber.Map {
	return fiber.Map{
		"user":        result.User,
		"accessToken": result.AccessToken,
		"expiresAt":   result.ExpiresAt,
	}
}

// RegisterRoutes registers auth routes. Auth endpoints use the stricter
// rate-limit class.
func (h *AuthHandler) RegisterRoutes(app *fiber.App, admission *middleware.Admission, auth *middleware.AuthMiddleware) {
	group := app.Group("/api/auth", admission.Handler("auth"))

	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/logout", h.Logout)

	app.Get("/api/me", admission.Handler("default"), auth.RequireAuth(), h.Me)
}
