package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// MentorRequestHandler wires the mentorship-request endpoints.
type MentorRequestHandler struct {
	service service.MentorRequestService
	logger  zerolog.Logger
}

// NewMentorRequestHandler creates a mentorship-request handler instance.
func NewMentorRequestHandler(service service.MentorRequestService, logger zerolog.Logger) *MentorRequestHandler {
	return &MentorRequestHandler{
		service: service,
		logger:  logger.With().Str("component", "mentor_request_handler").Logger(),
	}
}

// Register binds mentorship-request routes under the provided router group.
// The mentorOnly gate fronts the respond route; ownership of the individual
// request is still checked in the service.
func (h *MentorRequestHandler) Register(router fiber.Router, mentorOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", mentorOnly, h.respond)
	router.Post("/:id/notified", h.markNotified)
}

func (h *MentorRequestHandler) create(c *fiber.Ctx) error {
	var payload dto.MentorRequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrNotAMentor):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMentorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRequestPending):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create mentorship request")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create mentorship request")
		}
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mentorship request sent", request)
}

func (h *MentorRequestHandler) list(c *fiber.Ctx) error {
	requests, err := h.service.ListForUser(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list mentorship requests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list mentorship requests")
	}
	return utils.SendSuccess(c, "mentorship requests fetched", requests)
}

func (h *MentorRequestHandler) respond(c *fiber.Ctx) error {
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var payload dto.MentorRequestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Respond(c.Context(), requestID, userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrRequestAlreadyResolved):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotRequestMentor):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrRequestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to respond to mentorship request")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to respond to mentorship request")
		}
	}
	return utils.SendSuccess(c, "mentorship request updated", request)
}

func (h *MentorRequestHandler) markNotified(c *fiber.Ctx) error {
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := h.service.MarkNotified(c.Context(), requestID, userIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to mark request notified")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark request notified")
		}
	}
	return utils.SendSuccess(c, "notification acknowledged", nil)
}
