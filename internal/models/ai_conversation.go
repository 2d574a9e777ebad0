package models

import "time"

// Senders recorded on AI assistant messages.
const (
	AISenderUser = "user"
	AISenderBot  = "bot"
)

// AIConversation groups a user's exchanges with the Q&A assistant.
type AIConversation struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Title     string      `gorm:"size:255;not null;default:'New Conversation'" json:"title"`
	Messages  []AIMessage `gorm:"foreignKey:ConversationID" json:"messages"`
	IsActive  bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AIMessage is one turn in an assistant conversation.
type AIMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Sender         string    `gorm:"size:16;not null" json:"sender"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time `json:"timestamp"`
}
