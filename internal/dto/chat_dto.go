package dto

import (
	"strconv"
	"time"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// StartConversationRequest identifies the user to open a thread with. The
// caller's own id yields the self "saved messages" thread.
type StartConversationRequest struct {
	UserID uint `json:"userId" validate:"required"`
}

// SendMessageRequest carries the text for a new chat message.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// EditMessageRequest carries replacement text for an existing message.
type EditMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// ParticipantResponse is the trimmed user view embedded in chat payloads.
type ParticipantResponse struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Avatar    string   `json:"avatar,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// MessageResponse is the serialized representation of a chat message.
type MessageResponse struct {
	ID             uint                `json:"id"`
	ConversationID uint                `json:"conversation_id"`
	Sender         ParticipantResponse `json:"sender"`
	Text           string              `json:"text,omitempty"`
	FileURL        string              `json:"fileUrl,omitempty"`
	FileName       string              `json:"fileName,omitempty"`
	FileType       string              `json:"fileType,omitempty"`
	Edited         bool                `json:"isEdited"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ConversationResponse decorates a conversation with its unread count and the
// latest message for list previews.
type ConversationResponse struct {
	ID           uint                  `json:"id"`
	Participants []ParticipantResponse `json:"participants"`
	LastMessage  string                `json:"lastMessage,omitempty"`
	LastRead     map[string]time.Time  `json:"lastRead"`
	UnreadCount  int64                 `json:"unreadCount"`
	Messages     []MessageResponse     `json:"messages"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// NewParticipantResponse converts a user model into its chat-facing view.
func NewParticipantResponse(user models.User) ParticipantResponse {
	return ParticipantResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		Skills:    user.Skills,
		Languages: user.Languages,
	}
}

// NewMessageResponse converts a message model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Sender:         NewParticipantResponse(message.Sender),
		Text:           message.Text,
		FileURL:        message.FileURL,
		FileName:       message.FileName,
		FileType:       message.FileType,
		Edited:         message.Edited,
		CreatedAt:      message.CreatedAt,
		UpdatedAt:      message.UpdatedAt,
	}
}

// NewMessageResponseSlice converts a slice of message models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// NewConversationResponse converts a conversation model into a DTO. Unread
// count and preview messages are filled in by the chat service.
func NewConversationResponse(conversation models.Conversation) ConversationResponse {
	participants := make([]ParticipantResponse, 0, len(conversation.Participants))
	for _, p := range conversation.Participants {
		participants = append(participants, NewParticipantResponse(p.User))
	}

	lastRead := make(map[string]time.Time, len(conversation.Reads))
	for _, read := range conversation.Reads {
		lastRead[strconv.FormatUint(uint64(read.UserID), 10)] = read.LastReadAt
	}

	return ConversationResponse{
		ID:           conversation.ID,
		Participants: participants,
		LastMessage:  conversation.LastMessage,
		LastRead:     lastRead,
		Messages:     []MessageResponse{},
		CreatedAt:    conversation.CreatedAt,
		UpdatedAt:    conversation.UpdatedAt,
	}
}
