package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// AIConversationRepository persists assistant conversations and their turns.
type AIConversationRepository interface {
	Create(ctx context.Context, conversation *models.AIConversation) error
	GetByID(ctx context.Context, id uint) (models.AIConversation, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.AIConversation, error)
	AppendMessages(ctx context.Context, conversationID uint, messages []models.AIMessage) error
	UpdateTitle(ctx context.Context, conversationID uint, title string) error
	Delete(ctx context.Context, id uint) error
}

type aiConversationRepository struct {
	db *gorm.DB
}

// NewAIConversationRepository constructs an assistant conversation repository backed by GORM.
func NewAIConversationRepository(db *gorm.DB) AIConversationRepository {
	return &aiConversationRepository{db: db}
}

func (r *aiConversationRepository) Create(ctx context.Context, conversation *models.AIConversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *aiConversationRepository) GetByID(ctx context.Context, id uint) (models.AIConversation, error) {
	var conversation models.AIConversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("ai_messages.created_at ASC, ai_messages.id ASC")
		}).
		First(&conversation, id).Error
	if err != nil {
		return models.AIConversation{}, err
	}
	return conversation, nil
}

func (r *aiConversationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.AIConversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var conversations []models.AIConversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("ai_messages.created_at ASC, ai_messages.id ASC")
		}).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// AppendMessages adds turns and bumps the conversation's updated_at so recent
// threads sort first.
func (r *aiConversationRepository) AppendMessages(ctx context.Context, conversationID uint, messages []models.AIMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range messages {
			messages[i].ConversationID = conversationID
			if err := tx.Create(&messages[i]).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.AIConversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

func (r *aiConversationRepository) UpdateTitle(ctx context.Context, conversationID uint, title string) error {
	return r.db.WithContext(ctx).
		Model(&models.AIConversation{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
}

func (r *aiConversationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.AIMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AIConversation{}, id).Error
	})
}
