package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// ProfileHandler wires the profile and mentor-directory endpoints.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler creates a profile handler instance.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds profile routes under the provided router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.me)
	router.Put("", h.update)
	router.Post("/avatar", h.uploadAvatar)
	router.Get("/:id", h.get)
}

// RegisterMentorRoutes binds the public mentor directory.
func (h *ProfileHandler) RegisterMentorRoutes(router fiber.Router) {
	router.Get("", h.listMentors)
}

// RegisterUserRoutes binds the authenticated account directory used by the
// chat partner picker.
func (h *ProfileHandler) RegisterUserRoutes(router fiber.Router) {
	router.Get("", h.listUsers)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.mapProfileError(c, err, "failed to fetch profile")
	}
	return utils.SendSuccess(c, "profile fetched", profile)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	profile, err := h.service.Get(c.Context(), userID)
	if err != nil {
		return h.mapProfileError(c, err, "failed to fetch profile")
	}
	return utils.SendSuccess(c, "profile fetched", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.Update(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMentorOnlyField):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			return h.mapProfileError(c, err, "failed to update profile")
		}
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) uploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read avatar file")
	}
	defer file.Close()

	result, err := h.service.UploadAvatar(c.Context(), userIDFromContext(c), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrFileTypeNotAllowed), errors.Is(err, service.ErrFileRequired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.mapProfileError(c, err, "failed to upload avatar")
		}
	}
	return utils.SendSuccess(c, "avatar updated", result)
}

func (h *ProfileHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}
	return utils.SendSuccess(c, "users fetched", users)
}

func (h *ProfileHandler) listMentors(c *fiber.Ctx) error {
	mentors, err := h.service.ListMentors(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list mentors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list mentors")
	}
	return utils.SendSuccess(c, "mentors fetched", mentors)
}

func (h *ProfileHandler) mapProfileError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
