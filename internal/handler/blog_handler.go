package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/service"
	"github.com/TinsuJembere/shelearns-api/internal/utils"
)

// BlogHandler wires the community story endpoints.
type BlogHandler struct {
	service service.BlogService
	logger  zerolog.Logger
}

// NewBlogHandler creates a blog handler instance.
func NewBlogHandler(service service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		service: service,
		logger:  logger.With().Str("component", "blog_handler").Logger(),
	}
}

// Register binds blog routes under the provided router group. List and read
// are public; writes require authentication, enforced by the router.
func (h *BlogHandler) Register(public fiber.Router, authed fiber.Router) {
	public.Get("", h.list)
	public.Get("/:id", h.get)
	authed.Post("", h.submit)
	authed.Put("/:id", h.update)
	authed.Delete("/:id", h.remove)
}

func (h *BlogHandler) list(c *fiber.Ctx) error {
	posts, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list blog posts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list blog posts")
	}
	return utils.SendSuccess(c, "blog posts fetched", posts)
}

func (h *BlogHandler) get(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	post, err := h.service.Get(c.Context(), postID)
	if err != nil {
		return h.mapBlogError(c, err, "failed to fetch blog post")
	}
	return utils.SendSuccess(c, "blog post fetched", post)
}

func (h *BlogHandler) submit(c *fiber.Ctx) error {
	var payload dto.BlogSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.mapBlogError(c, err, "failed to submit blog post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "blog post published", post)
}

func (h *BlogHandler) update(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var payload dto.BlogUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.Update(c.Context(), postID, userIDFromContext(c), payload)
	if err != nil {
		return h.mapBlogError(c, err, "failed to update blog post")
	}
	return utils.SendSuccess(c, "blog post updated", post)
}

func (h *BlogHandler) remove(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	if err := h.service.Delete(c.Context(), postID, userIDFromContext(c)); err != nil {
		return h.mapBlogError(c, err, "failed to delete blog post")
	}
	return utils.SendSuccess(c, "blog post deleted", nil)
}

func (h *BlogHandler) mapBlogError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAuthor):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrBlogPostNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
