package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

func TestSubscribeNormalizesAndDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubscribeService(repository.NewSubscriberRepository(db), validate, testLogger())

	err := svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "Hana@Example.COM"})
	require.NoError(t, err)

	var stored models.Subscriber
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "hana@example.com", stored.Email)

	err = svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "hana@example.com"})
	require.ErrorIs(t, err, ErrAlreadySubscribed)

	err = svc.Subscribe(context.Background(), dto.SubscribeRequest{Email: "not-an-email"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAlreadySubscribed)
}
