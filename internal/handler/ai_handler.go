package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// AIHandler wires the learning-assistant endpoints.
type AIHandler struct {
	service service.AIService
	logger  zerolog.Logger
}

// NewAIHandler creates an assistant handler instance.
func NewAIHandler(service service.AIService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register binds assistant routes under the provided router group.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/ask", h.ask)
	router.Post("/conversations", h.startConversation)
	router.Get("/conversations", h.listConversations)
	router.Get("/conversations/:id", h.getConversation)
	router.Delete("/conversations/:id", h.deleteConversation)
}

func (h *AIHandler) ask(c *fiber.Ctx) error {
	var payload dto.AskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.service.Ask(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, "question is required")
		case errors.Is(err, service.ErrAIConversationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssistantUnavailable):
			return utils.SendError(c, fiber.StatusBadGateway, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("assistant request failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "assistant request failed")
		}
	}
	return utils.SendSuccess(c, "answer generated", answer)
}

func (h *AIHandler) startConversation(c *fiber.Ctx) error {
	conversation, err := h.service.StartConversation(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to start assistant conversation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to start assistant conversation")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "conversation started", conversation)
}

func (h *AIHandler) listConversations(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	conversations, err := h.service.ListConversations(c.Context(), userIDFromContext(c), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list assistant conversations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assistant conversations")
	}
	return utils.SendSuccess(c, "conversations fetched", conversations)
}

func (h *AIHandler) getConversation(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	conversation, err := h.service.GetConversation(c.Context(), conversationID, userIDFromContext(c))
	if err != nil {
		return h.mapAIError(c, err, "failed to fetch assistant conversation")
	}
	return utils.SendSuccess(c, "conversation fetched", conversation)
}

func (h *AIHandler) deleteConversation(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := h.service.DeleteConversation(c.Context(), conversationID, userIDFromContext(c)); err != nil {
		return h.mapAIError(c, err, "failed to delete assistant conversation")
	}
	return utils.SendSuccess(c, "conversation deleted", nil)
}

func (h *AIHandler) mapAIError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrAIConversationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
