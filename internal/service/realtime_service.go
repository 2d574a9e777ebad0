package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/observability"
)

const realtimeSendBufferSize = 8

// RoomBlogUpdates receives an invalidation signal whenever a story is published.
const RoomBlogUpdates = "blog-updates"

// EventNewBlogPost is the signal name broadcast on story publication.
const EventNewBlogPost = "new-blog-post"

// RealtimeConnectionOptions wraps metadata extracted during the HTTP upgrade.
type RealtimeConnectionOptions struct {
	UserID uint
	Room   string
}

// RealtimeService broadcasts payload-free invalidation signals to subscribed
// clients. Delivery is at-most-once and best-effort: no history is kept, and a
// client that was disconnected when an event fired catches up on its next fetch.
type RealtimeService interface {
	ServeConnection(conn *websocket.Conn, opts RealtimeConnectionOptions)
	Publish(ctx context.Context, room, event string)
	Start(ctx context.Context)
}

type realtimeService struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	hub         *realtimeHub
	nodeID      string
}

// realtimeHub tracks active websocket clients per room.
type realtimeHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*realtimeClient]struct{}
	log   zerolog.Logger
}

type realtimeClient struct {
	conn    *websocket.Conn
	send    chan dto.RealtimeEvent
	options RealtimeConnectionOptions
	service *realtimeService
	closed  chan struct{}
	once    sync.Once
}

type realtimeEnvelope struct {
	Source string    `json:"source"`
	Room   string    `json:"room"`
	Event  string    `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

// NewRealtimeService constructs the realtime broadcaster. Redis and NATS are
// optional; when present, events fan out to clients attached to other nodes.
func NewRealtimeService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) RealtimeService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":realtime"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".realtime"
	}

	return &realtimeService{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "realtime_service").Logger(),
		hub: &realtimeHub{
			rooms: make(map[string]map[*realtimeClient]struct{}),
			log:   logger.With().Str("component", "realtime_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *realtimeService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *realtimeService) ServeConnection(conn *websocket.Conn, opts RealtimeConnectionOptions) {
	client := &realtimeClient{
		conn:    conn,
		send:    make(chan dto.RealtimeEvent, realtimeSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)
	observability.RealtimeConnectionsTotal().Inc()

	go client.writer()
	client.reader()
}

// Publish broadcasts the event to local room members and fans it out to peer
// nodes. A nil context falls back to Background for the transport publish.
func (s *realtimeService) Publish(ctx context.Context, room, event string) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.hub.broadcast(room, dto.RealtimeEvent{Room: room, Event: event})
	observability.RealtimeEventsTotal().WithLabelValues(room).Inc()

	envelope := realtimeEnvelope{
		Source: s.nodeID,
		Room:   room,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal realtime envelope")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Str("room", room).Msg("failed to publish realtime event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Str("room", room).Msg("failed to publish realtime event to nats")
		}
	}
}

func (s *realtimeService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *realtimeService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "shelearns-realtime", func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (s *realtimeService) handleEnvelope(data []byte) {
	var envelope realtimeEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid realtime envelope")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	s.hub.broadcast(envelope.Room, dto.RealtimeEvent{Room: envelope.Room, Event: envelope.Event})
}

func (h *realtimeHub) register(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Room
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*realtimeClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("room", room).Uint("user_id", client.options.UserID).Msg("realtime client connected")
}

func (h *realtimeHub) unregister(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Room
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("room", room).Uint("user_id", client.options.UserID).Msg("realtime client disconnected")
}

func (h *realtimeHub) broadcast(room string, event dto.RealtimeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Str("room", room).Uint("user_id", client.options.UserID).Msg("dropping realtime event for slow client")
		}
	}
}

// reader drains inbound frames; clients have nothing to say on this socket,
// but the read loop is what detects the close.
func (c *realtimeClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("realtime read loop ended")
			return
		}
	}
}

func (c *realtimeClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *realtimeClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
