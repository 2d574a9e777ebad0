package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/handler"
	"github.com/TinsuJembere/shelearns-api/internal/service"
)

type mockChatService struct {
	conversation dto.ConversationResponse
	message      dto.MessageResponse
	err          error

	lastConversationID uint
	lastMessageID      uint
	lastUserID         uint
	lastText           string
	lastFileName       string
}

func (m *mockChatService) ListConversations(_ context.Context, userID uint) ([]dto.ConversationResponse, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return []dto.ConversationResponse{m.conversation}, nil
}

func (m *mockChatService) StartOrGet(_ context.Context, userID uint, payload dto.StartConversationRequest) (dto.ConversationResponse, error) {
	m.lastUserID = userID
	if m.err != nil {
		return dto.ConversationResponse{}, m.err
	}
	return m.conversation, nil
}

func (m *mockChatService) Messages(_ context.Context, conversationID, requesterID uint) ([]dto.MessageResponse, error) {
	m.lastConversationID = conversationID
	m.lastUserID = requesterID
	if m.err != nil {
		return nil, m.err
	}
	return []dto.MessageResponse{m.message}, nil
}

func (m *mockChatService) SendText(_ context.Context, conversationID, senderID uint, payload dto.SendMessageRequest) (dto.MessageResponse, error) {
	m.lastConversationID = conversationID
	m.lastUserID = senderID
	m.lastText = payload.Text
	if m.err != nil {
		return dto.MessageResponse{}, m.err
	}
	return m.message, nil
}

func (m *mockChatService) SendFile(_ context.Context, conversationID, senderID uint, file *multipart.FileHeader) (dto.MessageResponse, error) {
	m.lastConversationID = conversationID
	m.lastUserID = senderID
	m.lastFileName = file.Filename
	if m.err != nil {
		return dto.MessageResponse{}, m.err
	}
	return m.message, nil
}

func (m *mockChatService) EditMessage(_ context.Context, messageID, requesterID uint, payload dto.EditMessageRequest) (dto.MessageResponse, error) {
	m.lastMessageID = messageID
	m.lastUserID = requesterID
	m.lastText = payload.Text
	if m.err != nil {
		return dto.MessageResponse{}, m.err
	}
	return m.message, nil
}

func (m *mockChatService) DeleteMessage(_ context.Context, messageID, requesterID uint) error {
	m.lastMessageID = messageID
	m.lastUserID = requesterID
	return m.err
}

func (m *mockChatService) MarkRead(_ context.Context, conversationID, requesterID uint) error {
	m.lastConversationID = conversationID
	m.lastUserID = requesterID
	return m.err
}

func newChatApp(svc service.ChatService) *fiber.App {
	// Same body limit the server runs with, so large uploads reach the handler.
	app := fiber.New(fiber.Config{BodyLimit: 12 * 1024 * 1024})
	group := app.Group("/api/conversations", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	handler.NewChatHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestChatHandler_SendTextCreated(t *testing.T) {
	svc := &mockChatService{message: dto.MessageResponse{ID: 11, ConversationID: 3, Text: "hello"}}
	app := newChatApp(svc)

	body, err := json.Marshal(dto.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/3/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.MessageResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "message sent", response.Message)
	require.Equal(t, uint(11), response.Data.ID)
	require.Equal(t, uint(3), svc.lastConversationID)
	require.Equal(t, uint(7), svc.lastUserID)
	require.Equal(t, "hello", svc.lastText)
}

func TestChatHandler_SendFileCreated(t *testing.T) {
	svc := &mockChatService{message: dto.MessageResponse{ID: 12, FileName: "report.pdf"}}
	app := newChatApp(svc)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/3/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "report.pdf", svc.lastFileName)
}

func TestChatHandler_SendFileAboveDefaultBodyLimit(t *testing.T) {
	svc := &mockChatService{message: dto.MessageResponse{ID: 13, FileName: "slides.png"}}
	app := newChatApp(svc)

	// 6 MiB payload: over fiber's stock 4 MiB limit, under the 10 MiB ceiling.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "slides.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xAB}, 6*1024*1024))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/3/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "slides.png", svc.lastFileName)
}

func TestChatHandler_SendFileMissingPart(t *testing.T) {
	svc := &mockChatService{}
	app := newChatApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/3/files", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatHandler_InvalidConversationID(t *testing.T) {
	svc := &mockChatService{}
	app := newChatApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.lastConversationID)
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "empty message", err: service.ErrEmptyMessage, statusCode: fiber.StatusBadRequest},
		{name: "file edit", err: service.ErrFileMessageEdit, statusCode: fiber.StatusBadRequest},
		{name: "not participant", err: service.ErrNotParticipant, statusCode: fiber.StatusForbidden},
		{name: "not sender", err: service.ErrNotSender, statusCode: fiber.StatusForbidden},
		{name: "conversation missing", err: service.ErrConversationNotFound, statusCode: fiber.StatusNotFound},
		{name: "message missing", err: service.ErrMessageNotFound, statusCode: fiber.StatusNotFound},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockChatService{err: tc.err}
			app := newChatApp(svc)

			body, err := json.Marshal(dto.SendMessageRequest{Text: "hi"})
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/api/conversations/3/messages", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestChatHandler_StartOrGetTargetMissing(t *testing.T) {
	svc := &mockChatService{err: service.ErrChatTargetNotFound}
	app := newChatApp(svc)

	body, err := json.Marshal(dto.StartConversationRequest{UserID: 99})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/conversations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatHandler_MarkRead(t *testing.T) {
	svc := &mockChatService{}
	app := newChatApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/5/read", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastConversationID)
	require.Equal(t, uint(7), svc.lastUserID)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
