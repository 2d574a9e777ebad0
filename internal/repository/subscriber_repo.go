package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// SubscriberRepository persists newsletter signups.
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	Exists(ctx context.Context, email string) (bool, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository constructs a subscriber repository backed by GORM.
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}

func (r *subscriberRepository) Exists(ctx context.Context, email string) (bool, error) {
	var subscriber models.Subscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&subscriber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
