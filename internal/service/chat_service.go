package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/observability"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

const maxChatFileBytes = 10 * 1024 * 1024

var (
	// ErrConversationNotFound indicates the conversation id does not resolve.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrMessageNotFound indicates the message id does not resolve.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotParticipant indicates the requester has no standing in the conversation.
	ErrNotParticipant = errors.New("not a conversation participant")
	// ErrNotSender indicates someone other than the original sender tried to modify a message.
	ErrNotSender = errors.New("only the original sender may modify a message")
	// ErrEmptyMessage indicates a blank text payload.
	ErrEmptyMessage = errors.New("message text required")
	// ErrFileMessageEdit indicates an edit attempt on a file-backed message.
	ErrFileMessageEdit = errors.New("file messages cannot be edited")
	// ErrChatTargetNotFound indicates the user to chat with does not exist.
	ErrChatTargetNotFound = errors.New("chat target user not found")
	// ErrFileRequired indicates the upload form carried no file.
	ErrFileRequired = errors.New("file is required")
	// ErrFileTooLarge indicates the upload exceeded the size ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the upload failed the allow-list.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)

var allowedChatExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".pdf":  {},
	".mp4":  {},
	".zip":  {},
}

// FileStorage abstracts the external object-storage collaborator.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ChatService orchestrates conversations, messages, unread tracking and read marks.
type ChatService interface {
	ListConversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error)
	StartOrGet(ctx context.Context, userID uint, payload dto.StartConversationRequest) (dto.ConversationResponse, error)
	Messages(ctx context.Context, conversationID, requesterID uint) ([]dto.MessageResponse, error)
	SendText(ctx context.Context, conversationID, senderID uint, payload dto.SendMessageRequest) (dto.MessageResponse, error)
	SendFile(ctx context.Context, conversationID, senderID uint, file *multipart.FileHeader) (dto.MessageResponse, error)
	EditMessage(ctx context.Context, messageID, requesterID uint, payload dto.EditMessageRequest) (dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageID, requesterID uint) error
	MarkRead(ctx context.Context, conversationID, requesterID uint) error
}

type chatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	storage       FileStorage
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewChatService constructs the chat service.
func NewChatService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	storage FileStorage,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChatService {
	return &chatService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		storage:       storage,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "chat_service").Logger(),
		tracer:        otel.Tracer("github.com/TinsuJembere/shelearns-api/internal/service/chat"),
		now:           time.Now,
	}
}

// ListConversations returns the caller's threads newest-activity first, each
// decorated with its unread count and the latest message for preview. Unread
// counts are recomputed on every fetch rather than cached.
func (s *chatService) ListConversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		response := dto.NewConversationResponse(conversation)

		var since *time.Time
		for _, read := range conversation.Reads {
			if read.UserID == userID {
				at := read.LastReadAt
				since = &at
				break
			}
		}

		unread, err := s.messages.CountUnread(ctx, conversation.ID, userID, since)
		if err != nil {
			return nil, err
		}
		response.UnreadCount = unread

		if latest, ok, err := s.messages.LatestByConversation(ctx, conversation.ID); err != nil {
			return nil, err
		} else if ok {
			response.Messages = []dto.MessageResponse{dto.NewMessageResponse(latest)}
		}

		out = append(out, response)
	}

	return out, nil
}

// StartOrGet finds or creates the unique conversation between the caller and
// the target. Calling it twice with the same pair, in either order, yields the
// same conversation: the normalized pair key carries a unique index, so a
// concurrent double-create loses and the winner is re-fetched.
func (s *chatService) StartOrGet(ctx context.Context, userID uint, payload dto.StartConversationRequest) (dto.ConversationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ConversationResponse{}, err
	}

	targetID := payload.UserID
	if targetID != userID {
		if _, err := s.users.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ConversationResponse{}, ErrChatTargetNotFound
			}
			return dto.ConversationResponse{}, err
		}
	}

	pairKey := models.ConversationPairKey(userID, targetID)

	conversation, err := s.conversations.GetByPairKey(ctx, pairKey)
	if err == nil {
		return dto.NewConversationResponse(conversation), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ConversationResponse{}, err
	}

	participants := []uint{userID}
	if targetID != userID {
		participants = append(participants, targetID)
	}

	created := models.Conversation{PairKey: pairKey}
	if err := s.conversations.Create(ctx, &created, participants); err != nil {
		// Lost a creation race; the unique pair key guarantees the winner exists.
		conversation, lookupErr := s.conversations.GetByPairKey(ctx, pairKey)
		if lookupErr != nil {
			return dto.ConversationResponse{}, err
		}
		return dto.NewConversationResponse(conversation), nil
	}

	s.logger.Info().Uint("conversation_id", created.ID).Str("pair_key", pairKey).Msg("conversation created")

	conversation, err = s.conversations.GetByID(ctx, created.ID)
	if err != nil {
		return dto.ConversationResponse{}, err
	}
	return dto.NewConversationResponse(conversation), nil
}

// Messages returns the full transcript in ascending creation order with sender
// identities populated. Non-renderable rows never reach the caller.
func (s *chatService) Messages(ctx context.Context, conversationID, requesterID uint) ([]dto.MessageResponse, error) {
	if err := s.requireParticipant(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

func (s *chatService) SendText(ctx context.Context, conversationID, senderID uint, payload dto.SendMessageRequest) (dto.MessageResponse, error) {
	// Messages render as plain text; strip any markup before storing.
	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	if err := s.requireParticipant(ctx, conversationID, senderID); err != nil {
		return dto.MessageResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.send_text", trace.WithAttributes(
		attribute.Int("chat.conversation_id", int(conversationID)),
		attribute.Int("chat.sender_id", int(senderID)),
	))
	defer span.End()

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
	}
	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	if err := s.conversations.SetLastMessage(spanCtx, conversationID, text); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	observability.ChatMessagesSent().WithLabelValues("text").Inc()

	stored, err := s.messages.GetByID(spanCtx, message.ID)
	if err != nil {
		return dto.MessageResponse{}, err
	}
	return dto.NewMessageResponse(stored), nil
}

// SendFile validates and stores the upload before any message row exists, so a
// storage failure leaves no partial state behind.
func (s *chatService) SendFile(ctx context.Context, conversationID, senderID uint, file *multipart.FileHeader) (dto.MessageResponse, error) {
	if err := s.requireParticipant(ctx, conversationID, senderID); err != nil {
		return dto.MessageResponse{}, err
	}

	if file == nil {
		return dto.MessageResponse{}, ErrFileRequired
	}
	if file.Size > maxChatFileBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return dto.MessageResponse{}, ErrFileTooLarge
	}

	extension := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedChatExtensions[extension]; !ok {
		observability.UploadRejected().WithLabelValues("extension").Inc()
		return dto.MessageResponse{}, ErrFileTypeNotAllowed
	}

	handle, err := file.Open()
	if err != nil {
		return dto.MessageResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxChatFileBytes+1)); err != nil {
		return dto.MessageResponse{}, err
	}
	if buf.Len() > maxChatFileBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return dto.MessageResponse{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	if !isAllowedChatMime(detected.String()) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return dto.MessageResponse{}, ErrFileTypeNotAllowed
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.send_file", trace.WithAttributes(
		attribute.Int("chat.conversation_id", int(conversationID)),
		attribute.Int("chat.sender_id", int(senderID)),
		attribute.Int64("chat.file_bytes", int64(buf.Len())),
		attribute.String("chat.file_type", detected.String()),
	))
	defer span.End()

	url, err := s.storage.Upload(spanCtx, sanitizeFileName(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		FileURL:        url,
		FileName:       file.Filename,
		FileType:       detected.String(),
	}
	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	preview := fmt.Sprintf("File: %s", file.Filename)
	if err := s.conversations.SetLastMessage(spanCtx, conversationID, preview); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	observability.ChatMessagesSent().WithLabelValues("file").Inc()

	stored, err := s.messages.GetByID(spanCtx, message.ID)
	if err != nil {
		return dto.MessageResponse{}, err
	}
	return dto.NewMessageResponse(stored), nil
}

func (s *chatService) EditMessage(ctx context.Context, messageID, requesterID uint, payload dto.EditMessageRequest) (dto.MessageResponse, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrMessageNotFound
		}
		return dto.MessageResponse{}, err
	}

	if message.SenderID != requesterID {
		return dto.MessageResponse{}, ErrNotSender
	}
	if message.IsFile() {
		return dto.MessageResponse{}, ErrFileMessageEdit
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	message.Text = text
	message.Edited = true
	if err := s.messages.Update(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	return dto.NewMessageResponse(message), nil
}

// DeleteMessage hard-deletes the row. The conversation's last-message cache is
// a display hint and is deliberately left stale.
func (s *chatService) DeleteMessage(ctx context.Context, messageID, requesterID uint) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if message.SenderID != requesterID {
		return ErrNotSender
	}

	return s.messages.Delete(ctx, message.ID)
}

// MarkRead stamps the requester's last-read time. This is the only mechanism
// by which unread counts decrease.
func (s *chatService) MarkRead(ctx context.Context, conversationID, requesterID uint) error {
	if err := s.requireParticipant(ctx, conversationID, requesterID); err != nil {
		return err
	}
	return s.conversations.MarkRead(ctx, conversationID, requesterID, s.now().UTC())
}

func (s *chatService) requireParticipant(ctx context.Context, conversationID, userID uint) error {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		return err
	}

	member, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotParticipant
	}
	return nil
}

func isAllowedChatMime(m string) bool {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	if strings.HasPrefix(lower, "image/") {
		return true
	}
	switch lower {
	case "application/pdf", "video/mp4", "application/zip", "application/x-zip-compressed":
		return true
	default:
		return false
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
