package performance_test

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/handler"
	"github.com/TinsuJembere/shelearns-api/internal/service"
)

func TestRealtimeWebsocketHandshakeP95Under250ms(t *testing.T) {
	svc := service.NewRealtimeService(nil, "", nil, zerolog.Nop())

	baseURL, shutdown := startRealtimeServer(t, svc)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/realtime/ws?room=blog-updates"
	clients := 300
	durations := make([]time.Duration, 0, clients)

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	for i := 0; i < clients; i++ {
		start := time.Now()
		conn, resp, err := dialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("websocket dial failed: %v", err)
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		durations = append(durations, time.Since(start))
		_ = conn.Close()
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := percentile(durations, 0.95)

	if p95 > 250*time.Millisecond {
		t.Fatalf("expected websocket P95 <= 250ms, got %s", p95)
	}
}

func TestRealtimeBroadcastFanOutP95Under500ms(t *testing.T) {
	svc := service.NewRealtimeService(nil, "", nil, zerolog.Nop())

	baseURL, shutdown := startRealtimeServer(t, svc)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/realtime/ws?room=blog-updates"
	subscribers := 100
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	conns := make([]*websocket.Conn, 0, subscribers)
	for i := 0; i < subscribers; i++ {
		conn, resp, err := dialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("websocket dial failed: %v", err)
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		conns = append(conns, conn)
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	// Let the hub register every subscriber before broadcasting.
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	svc.Publish(context.Background(), service.RoomBlogUpdates, service.EventNewBlogPost)

	durations := make([]time.Duration, 0, subscribers)
	for _, conn := range conns {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatalf("set read deadline failed: %v", err)
		}
		var event dto.RealtimeEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("failed to read broadcast event: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := percentile(durations, 0.95)

	if p95 > 500*time.Millisecond {
		t.Fatalf("expected broadcast fan-out P95 <= 500ms, got %s", p95)
	}
}

func percentile(values []time.Duration, pct float64) time.Duration {
	if len(values) == 0 {
		return 0
	}
	index := int(math.Ceil(pct*float64(len(values)))) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(values) {
		index = len(values) - 1
	}
	return values[index]
}

func startRealtimeServer(t *testing.T, svc service.RealtimeService) (string, func()) {
	t.Helper()

	app := fiber.New()
	handler.NewRealtimeHandler(svc, zerolog.Nop()).Register(app.Group("/api/realtime"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
