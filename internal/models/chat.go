package models

import (
	"fmt"
	"time"
)

// Conversation is a message thread between two users, or one user and
// themselves ("saved messages"). PairKey is derived from the sorted participant
// ids so the same unordered pair can never yield two rows.
type Conversation struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	PairKey      string                    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	LastMessage  string                    `gorm:"type:text" json:"lastMessage"`
	Participants []ConversationParticipant `json:"-"`
	Reads        []ConversationRead        `json:"-"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// ConversationParticipant records standing membership of a user in a conversation.
type ConversationParticipant struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConversationID uint `gorm:"index;uniqueIndex:idx_conversation_member;not null" json:"conversation_id"`
	UserID         uint `gorm:"index;uniqueIndex:idx_conversation_member;not null" json:"user_id"`
	User           User `json:"user"`
}

// ConversationRead stores the last time a participant marked the conversation
// read. A missing row means the participant has never read it.
type ConversationRead struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;uniqueIndex:idx_conversation_reader;not null" json:"conversation_id"`
	UserID         uint      `gorm:"uniqueIndex:idx_conversation_reader;not null" json:"user_id"`
	LastReadAt     time.Time `gorm:"not null" json:"last_read_at"`
}

// Message carries either free text or a stored-file reference, never both.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	Sender         User      `json:"sender"`
	Text           string    `gorm:"type:text" json:"text,omitempty"`
	FileURL        string    `gorm:"size:512" json:"fileUrl,omitempty"`
	FileName       string    `gorm:"size:255" json:"fileName,omitempty"`
	FileType       string    `gorm:"size:128" json:"fileType,omitempty"`
	Edited         bool      `gorm:"not null;default:false" json:"isEdited"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsFile reports whether the message carries a stored-file payload.
func (m Message) IsFile() bool {
	return m.FileURL != ""
}

// ConversationPairKey normalizes a participant pair into an order-independent
// key. A self conversation keys on the single id.
func ConversationPairKey(a, b uint) string {
	if a == b {
		return fmt.Sprintf("u:%d", a)
	}
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("u:%d:%d", a, b)
}
