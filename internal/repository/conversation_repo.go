package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// ConversationRepository persists chat threads, membership and read marks.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation, participantIDs []uint) error
	GetByID(ctx context.Context, id uint) (models.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (models.Conversation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error)
	SetLastMessage(ctx context.Context, conversationID uint, preview string) error
	MarkRead(ctx context.Context, conversationID, userID uint, at time.Time) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs a conversation repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create inserts the conversation and its membership rows atomically. The
// unique index on pair_key rejects a concurrent duplicate of the same pair.
func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation, participantIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}

		for _, userID := range participantIDs {
			participant := models.ConversationParticipant{
				ConversationID: conversation.ID,
				UserID:         userID,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants.User").
		Preload("Reads").
		First(&conversation, id).Error
	if err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

func (r *conversationRepository) GetByPairKey(ctx context.Context, pairKey string) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants.User").
		Preload("Reads").
		Where("pair_key = ?", pairKey).
		First(&conversation).Error
	if err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants.User").
		Preload("Reads").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error) {
	var participant models.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetLastMessage refreshes the display cache and bumps updated_at so the
// conversation surfaces at the top of list fetches.
func (r *conversationRepository) SetLastMessage(ctx context.Context, conversationID uint, preview string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message": preview,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, userID uint, at time.Time) error {
	read := models.ConversationRead{
		ConversationID: conversationID,
		UserID:         userID,
		LastReadAt:     at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
		}).
		Create(&read).Error
}
