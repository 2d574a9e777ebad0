package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// MessageRepository persists individual chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (models.Message, error)
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
	LatestByConversation(ctx context.Context, conversationID uint) (models.Message, bool, error)
	CountUnread(ctx context.Context, conversationID, readerID uint, since *time.Time) (int64, error)
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// ListByConversation returns messages in ascending creation order. Rows with
// neither text nor a file reference are not renderable and are excluded.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Where("text <> '' OR file_url <> ''").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) LatestByConversation(ctx context.Context, conversationID uint) (models.Message, bool, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Where("text <> '' OR file_url <> ''").
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, false, nil
		}
		return models.Message{}, false, err
	}
	return message, true, nil
}

// CountUnread counts messages authored by others after the reader's last read
// time. A nil since means the reader has never read the conversation.
func (r *messageRepository) CountUnread(ctx context.Context, conversationID, readerID uint, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, readerID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}
