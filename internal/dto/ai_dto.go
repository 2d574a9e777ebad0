package dto

import (
	"time"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// AskRequest is a question for the AI assistant, optionally continuing an
// existing conversation.
type AskRequest struct {
	Question       string `json:"question" validate:"required,min=1,max=8000"`
	ConversationID *uint  `json:"conversationId"`
}

// AskResponse returns the assistant's answer and the conversation it landed in.
type AskResponse struct {
	Answer            string `json:"answer"`
	ConversationID    uint   `json:"conversationId"`
	ConversationTitle string `json:"conversationTitle"`
}

// AIMessageResponse is one turn in an assistant conversation.
type AIMessageResponse struct {
	ID        uint      `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AIConversationResponse is the serialized representation of an assistant
// conversation including its transcript.
type AIConversationResponse struct {
	ID        uint                `json:"id"`
	Title     string              `json:"title"`
	Messages  []AIMessageResponse `json:"messages"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewAIConversationResponse converts an assistant conversation model into a DTO.
func NewAIConversationResponse(conversation models.AIConversation) AIConversationResponse {
	messages := make([]AIMessageResponse, 0, len(conversation.Messages))
	for _, message := range conversation.Messages {
		messages = append(messages, AIMessageResponse{
			ID:        message.ID,
			Sender:    message.Sender,
			Text:      message.Text,
			Timestamp: message.CreatedAt,
		})
	}

	return AIConversationResponse{
		ID:        conversation.ID,
		Title:     conversation.Title,
		Messages:  messages,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}

// NewAIConversationResponseSlice converts assistant conversation models into DTOs.
func NewAIConversationResponseSlice(conversations []models.AIConversation) []AIConversationResponse {
	out := make([]AIConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		out = append(out, NewAIConversationResponse(conversation))
	}
	return out
}
