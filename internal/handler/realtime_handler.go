package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/service"
)

// RealtimeHandler wires the websocket upgrade for room subscriptions.
type RealtimeHandler struct {
	service service.RealtimeService
	logger  zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler instance.
func NewRealtimeHandler(service service.RealtimeService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		service: service,
		logger:  logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	room := strings.TrimSpace(conn.Query("room"))
	if room == "" {
		room = service.RoomBlogUpdates
	}

	var userID uint
	if id, ok := conn.Locals("user_id").(uint); ok {
		userID = id
	}

	h.logger.Info().Uint("user_id", userID).Str("room", room).Msg("realtime socket connected")
	h.service.ServeConnection(conn, service.RealtimeConnectionOptions{
		UserID: userID,
		Room:   room,
	})
	h.logger.Info().Uint("user_id", userID).Str("room", room).Msg("realtime socket disconnected")
}
