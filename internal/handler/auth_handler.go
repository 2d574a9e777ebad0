package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// AuthHandler wires signup, login and Google sign-in endpoints.
type AuthHandler struct {
	service     service.AuthService
	frontendURL string
	logger      zerolog.Logger
}

// NewAuthHandler creates an auth handler instance.
func NewAuthHandler(service service.AuthService, frontendURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:     service,
		frontendURL: frontendURL,
		logger:      logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds auth routes under the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/signup", h.signup)
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Get("/google", h.googleRedirect)
	router.Get("/google/callback", h.googleCallback)
}

// Tokens are stateless, so logout only confirms; clients drop the token.
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) signup(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Register(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("signup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "signup failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) googleRedirect(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.service.GoogleAuthURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) googleCallback(c *fiber.Ctx) error {
	if state := c.Query("state"); state == "" || state != c.Cookies("oauth_state") {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid oauth state")
	}

	code := c.Query("code")
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "authorization code missing")
	}

	result, err := h.service.GoogleExchange(c.Context(), code)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("google sign-in failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "google sign-in failed")
	}

	// Hand the token back to the SPA via redirect.
	return c.Redirect(fmt.Sprintf("%s/auth/callback?token=%s", h.frontendURL, result.Token), fiber.StatusTemporaryRedirect)
}
