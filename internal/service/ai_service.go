package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
	"github.com/TinsuJembere/shelearns-api/pkg/ai"
)

const aiTitleMaxLen = 50

var (
	// ErrAIConversationNotFound indicates the assistant thread does not exist
	// or belongs to another user.
	ErrAIConversationNotFound = errors.New("assistant conversation not found")
	// ErrAssistantUnavailable indicates the upstream model failed to answer.
	ErrAssistantUnavailable = errors.New("assistant is currently unavailable")
)

const aiDefaultTitle = "New conversation"

// AIService runs the learning-assistant chat threads.
type AIService interface {
	Ask(ctx context.Context, userID uint, payload dto.AskRequest) (dto.AskResponse, error)
	StartConversation(ctx context.Context, userID uint) (dto.AIConversationResponse, error)
	ListConversations(ctx context.Context, userID uint, limit int) ([]dto.AIConversationResponse, error)
	GetConversation(ctx context.Context, conversationID, userID uint) (dto.AIConversationResponse, error)
	DeleteConversation(ctx context.Context, conversationID, userID uint) error
}

type aiService struct {
	conversations repository.AIConversationRepository
	assistant     ai.Assistant
	validator     *validator.Validate
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAIService constructs the assistant service.
func NewAIService(conversations repository.AIConversationRepository, assistant ai.Assistant, validate *validator.Validate, logger zerolog.Logger) AIService {
	return &aiService{
		conversations: conversations,
		assistant:     assistant,
		validator:     validate,
		logger:        logger.With().Str("component", "ai_service").Logger(),
		now:           time.Now,
	}
}

// Ask answers a question within an existing thread or starts a new one. The
// first question of a new thread becomes its title, truncated for display.
func (s *aiService) Ask(ctx context.Context, userID uint, payload dto.AskRequest) (dto.AskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AskResponse{}, err
	}

	question := strings.TrimSpace(payload.Question)
	if question == "" {
		return dto.AskResponse{}, ErrEmptyMessage
	}

	var conversation models.AIConversation
	if payload.ConversationID != nil {
		found, err := s.ownedConversation(ctx, *payload.ConversationID, userID)
		if err != nil {
			return dto.AskResponse{}, err
		}
		conversation = found
		// A thread opened empty takes its title from the first question.
		if len(conversation.Messages) == 0 {
			conversation.Title = aiConversationTitle(question)
			if err := s.conversations.UpdateTitle(ctx, conversation.ID, conversation.Title); err != nil {
				return dto.AskResponse{}, err
			}
		}
	} else {
		conversation = models.AIConversation{
			UserID:   userID,
			Title:    aiConversationTitle(question),
			IsActive: true,
		}
		if err := s.conversations.Create(ctx, &conversation); err != nil {
			return dto.AskResponse{}, err
		}
	}

	history := make([]ai.Message, 0, len(conversation.Messages))
	for _, m := range conversation.Messages {
		history = append(history, ai.Message{Role: m.Sender, Content: m.Text})
	}

	answer, err := s.assistant.Answer(ctx, history, question)
	if err != nil {
		s.logger.Error().Err(err).Uint("conversation_id", conversation.ID).Msg("assistant request failed")
		return dto.AskResponse{}, ErrAssistantUnavailable
	}

	now := s.now().UTC()
	messages := []models.AIMessage{
		{ConversationID: conversation.ID, Sender: models.AISenderUser, Text: question, CreatedAt: now},
		{ConversationID: conversation.ID, Sender: models.AISenderBot, Text: answer, CreatedAt: now},
	}
	if err := s.conversations.AppendMessages(ctx, conversation.ID, messages); err != nil {
		return dto.AskResponse{}, err
	}

	return dto.AskResponse{
		Answer:            answer,
		ConversationID:    conversation.ID,
		ConversationTitle: conversation.Title,
	}, nil
}

// StartConversation opens an empty thread; the first Ask retitles it.
func (s *aiService) StartConversation(ctx context.Context, userID uint) (dto.AIConversationResponse, error) {
	conversation := models.AIConversation{
		UserID:   userID,
		Title:    aiDefaultTitle,
		IsActive: true,
	}
	if err := s.conversations.Create(ctx, &conversation); err != nil {
		return dto.AIConversationResponse{}, err
	}
	return dto.NewAIConversationResponse(conversation), nil
}

func (s *aiService) ListConversations(ctx context.Context, userID uint, limit int) ([]dto.AIConversationResponse, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewAIConversationResponseSlice(conversations), nil
}

func (s *aiService) GetConversation(ctx context.Context, conversationID, userID uint) (dto.AIConversationResponse, error) {
	conversation, err := s.ownedConversation(ctx, conversationID, userID)
	if err != nil {
		return dto.AIConversationResponse{}, err
	}
	return dto.NewAIConversationResponse(conversation), nil
}

func (s *aiService) DeleteConversation(ctx context.Context, conversationID, userID uint) error {
	conversation, err := s.ownedConversation(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	return s.conversations.Delete(ctx, conversation.ID)
}

func (s *aiService) ownedConversation(ctx context.Context, conversationID, userID uint) (models.AIConversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AIConversation{}, ErrAIConversationNotFound
		}
		return models.AIConversation{}, err
	}
	if conversation.UserID != userID {
		return models.AIConversation{}, ErrAIConversationNotFound
	}
	return conversation, nil
}

func aiConversationTitle(question string) string {
	// Truncate on runes so a multi-byte character never gets split.
	runes := []rune(question)
	if len(runes) <= aiTitleMaxLen {
		return question
	}
	return string(runes[:aiTitleMaxLen]) + "..."
}
