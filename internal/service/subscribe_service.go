package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

// ErrAlreadySubscribed indicates the email is already on the newsletter list.
var ErrAlreadySubscribed = errors.New("email is already subscribed")

// SubscribeService manages newsletter signups.
type SubscribeService interface {
	Subscribe(ctx context.Context, payload dto.SubscribeRequest) error
}

type subscribeService struct {
	subscribers repository.SubscriberRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubscribeService constructs the newsletter service.
func NewSubscribeService(subscribers repository.SubscriberRepository, validate *validator.Validate, logger zerolog.Logger) SubscribeService {
	return &subscribeService{
		subscribers: subscribers,
		validator:   validate,
		logger:      logger.With().Str("component", "subscribe_service").Logger(),
	}
}

func (s *subscribeService) Subscribe(ctx context.Context, payload dto.SubscribeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	exists, err := s.subscribers.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadySubscribed
	}

	if err := s.subscribers.Create(ctx, &models.Subscriber{Email: email}); err != nil {
		return err
	}

	s.logger.Info().Str("email", email).Msg("newsletter subscription added")
	return nil
}
