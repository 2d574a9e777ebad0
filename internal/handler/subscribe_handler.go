package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// SubscribeHandler wires the newsletter signup endpoint.
type SubscribeHandler struct {
	service service.SubscribeService
	logger  zerolog.Logger
}

// NewSubscribeHandler creates a subscribe handler instance.
func NewSubscribeHandler(service service.SubscribeService, logger zerolog.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		service: service,
		logger:  logger.With().Str("component", "subscribe_handler").Logger(),
	}
}

// Register binds the subscription route under the provided router group.
func (h *SubscribeHandler) Register(router fiber.Router) {
	router.Post("", h.subscribe)
}

func (h *SubscribeHandler) subscribe(c *fiber.Ctx) error {
	var payload dto.SubscribeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Subscribe(c.Context(), payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "a valid email is required")
		case errors.Is(err, service.ErrAlreadySubscribed):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("subscription failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "subscription failed")
		}
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subscribed", nil)
}
