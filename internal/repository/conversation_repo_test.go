package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.ConversationRead{},
		&models.Message{},
		&models.MentorRequest{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "hashed",
		Role:     models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestConversationCreateEnforcesPairKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	first := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, repo.Create(context.Background(), &first, []uint{alice.ID, bekah.ID}))

	var participants int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).Count(&participants).Error)
	require.Equal(t, int64(2), participants)

	// Same unordered pair collides on the unique key, and the failed insert
	// must not leave membership rows behind.
	dup := models.Conversation{PairKey: models.ConversationPairKey(bekah.ID, alice.ID)}
	require.Error(t, repo.Create(context.Background(), &dup, []uint{bekah.ID, alice.ID}))
	require.NoError(t, db.Model(&models.ConversationParticipant{}).Count(&participants).Error)
	require.Equal(t, int64(2), participants)

	found, err := repo.GetByPairKey(context.Background(), models.ConversationPairKey(bekah.ID, alice.ID))
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
	require.Len(t, found.Participants, 2)
}

func TestConversationListByUserOrdersByActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")
	chloe := seedUser(t, db, "Chloe")

	withBekah := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, repo.Create(context.Background(), &withBekah, []uint{alice.ID, bekah.ID}))
	withChloe := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, chloe.ID)}
	require.NoError(t, repo.Create(context.Background(), &withChloe, []uint{alice.ID, chloe.ID}))

	// Activity in the older thread moves it back to the top.
	require.NoError(t, repo.SetLastMessage(context.Background(), withBekah.ID, "hello again"))

	conversations, err := repo.ListByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	require.Equal(t, withBekah.ID, conversations[0].ID)
	require.Equal(t, "hello again", conversations[0].LastMessage)

	// Non-members see neither thread.
	conversations, err = repo.ListByUser(context.Background(), 9999)
	require.NoError(t, err)
	require.Empty(t, conversations)
}

func TestConversationIsParticipant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")
	chloe := seedUser(t, db, "Chloe")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, repo.Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	ok, err := repo.IsParticipant(context.Background(), conversation.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsParticipant(context.Background(), conversation.ID, chloe.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConversationMarkReadUpserts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, repo.Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, repo.MarkRead(context.Background(), conversation.ID, alice.ID, first))
	second := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkRead(context.Background(), conversation.ID, alice.ID, second))

	var reads []models.ConversationRead
	require.NoError(t, db.Where("conversation_id = ?", conversation.ID).Find(&reads).Error)
	require.Len(t, reads, 1)
	require.Equal(t, alice.ID, reads[0].UserID)
	require.WithinDuration(t, second, reads[0].LastReadAt, time.Second)
}
