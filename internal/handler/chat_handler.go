package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// ChatHandler wires the conversation and message endpoints.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds conversation routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.startOrGet)
	router.Get("/:id", h.messages)
	router.Post("/:id/read", h.markRead)
	router.Post("/:id/messages", h.sendText)
	router.Post("/:id/files", h.sendFile)
	router.Put("/:id/messages/:msgId", h.editMessage)
	router.Delete("/:id/messages/:msgId", h.deleteMessage)
}

func (h *ChatHandler) list(c *fiber.Ctx) error {
	conversations, err := h.service.ListConversations(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list conversations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list conversations")
	}
	return utils.SendSuccess(c, "conversations fetched", conversations)
}

func (h *ChatHandler) startOrGet(c *fiber.Ctx) error {
	var payload dto.StartConversationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	conversation, err := h.service.StartOrGet(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "userId is required")
		case errors.Is(err, service.ErrChatTargetNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to start conversation")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to start conversation")
		}
	}
	return utils.SendSuccess(c, "conversation ready", conversation)
}

func (h *ChatHandler) messages(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	messages, err := h.service.Messages(c.Context(), conversationID, userIDFromContext(c))
	if err != nil {
		return h.mapChatError(c, err, "failed to fetch messages")
	}
	return utils.SendSuccess(c, "messages fetched", messages)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := h.service.MarkRead(c.Context(), conversationID, userIDFromContext(c)); err != nil {
		return h.mapChatError(c, err, "failed to mark conversation read")
	}
	return utils.SendSuccess(c, "conversation marked read", nil)
}

func (h *ChatHandler) sendText(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	var payload dto.SendMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.SendText(c.Context(), conversationID, userIDFromContext(c), payload)
	if err != nil {
		return h.mapChatError(c, err, "failed to send message")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *ChatHandler) sendFile(c *fiber.Ctx) error {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	message, err := h.service.SendFile(c.Context(), conversationID, userIDFromContext(c), file)
	if err != nil {
		return h.mapChatError(c, err, "failed to send file")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "file sent", message)
}

func (h *ChatHandler) editMessage(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "msgId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	var payload dto.EditMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.EditMessage(c.Context(), messageID, userIDFromContext(c), payload)
	if err != nil {
		return h.mapChatError(c, err, "failed to edit message")
	}
	return utils.SendSuccess(c, "message updated", message)
}

func (h *ChatHandler) deleteMessage(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "msgId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	if err := h.service.DeleteMessage(c.Context(), messageID, userIDFromContext(c)); err != nil {
		return h.mapChatError(c, err, "failed to delete message")
	}
	return utils.SendSuccess(c, "message deleted", nil)
}

func (h *ChatHandler) mapChatError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err), errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrFileMessageEdit), errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrFileTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotParticipant), errors.Is(err, service.ErrNotSender):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrMessageNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
