package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

func TestMessageListSkipsEmptyPayloads(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, NewConversationRepository(db).Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	base := time.Now().UTC().Add(-time.Minute)
	rows := []models.Message{
		{ConversationID: conversation.ID, SenderID: alice.ID, Text: "hi", CreatedAt: base},
		{ConversationID: conversation.ID, SenderID: bekah.ID, CreatedAt: base.Add(time.Second)},
		{ConversationID: conversation.ID, SenderID: bekah.ID, FileURL: "https://cdn.example.com/a.png", FileName: "a.png", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	messages, err := repo.ListByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "hi", messages[0].Text)
	require.Equal(t, "a.png", messages[1].FileName)
	require.Equal(t, "Alice", messages[0].Sender.Name)

	latest, ok, err := repo.LatestByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.png", latest.FileName)
}

func TestMessageLatestOnEmptyConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, NewConversationRepository(db).Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	_, ok, err := repo.LatestByConversation(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMessageCountUnread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, NewConversationRepository(db).Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	base := time.Now().UTC().Add(-time.Hour)
	rows := []models.Message{
		{ConversationID: conversation.ID, SenderID: bekah.ID, Text: "one", CreatedAt: base},
		{ConversationID: conversation.ID, SenderID: bekah.ID, Text: "two", CreatedAt: base.Add(10 * time.Minute)},
		{ConversationID: conversation.ID, SenderID: alice.ID, Text: "mine", CreatedAt: base.Add(20 * time.Minute)},
		{ConversationID: conversation.ID, SenderID: bekah.ID, Text: "three", CreatedAt: base.Add(30 * time.Minute)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	// Never read: every foreign message counts.
	count, err := repo.CountUnread(context.Background(), conversation.ID, alice.ID, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	// Read up to the second message: only later foreign messages count.
	since := base.Add(15 * time.Minute)
	count, err = repo.CountUnread(context.Background(), conversation.ID, alice.ID, &since)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// The author's own messages never count against them.
	count, err = repo.CountUnread(context.Background(), conversation.ID, bekah.ID, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMessageUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	alice := seedUser(t, db, "Alice")
	bekah := seedUser(t, db, "Bekah")

	conversation := models.Conversation{PairKey: models.ConversationPairKey(alice.ID, bekah.ID)}
	require.NoError(t, NewConversationRepository(db).Create(context.Background(), &conversation, []uint{alice.ID, bekah.ID}))

	message := models.Message{ConversationID: conversation.ID, SenderID: alice.ID, Text: "draft"}
	require.NoError(t, repo.Create(context.Background(), &message))

	message.Text = "final"
	message.Edited = true
	require.NoError(t, repo.Update(context.Background(), &message))

	stored, err := repo.GetByID(context.Background(), message.ID)
	require.NoError(t, err)
	require.Equal(t, "final", stored.Text)
	require.True(t, stored.Edited)

	require.NoError(t, repo.Delete(context.Background(), message.ID))
	_, err = repo.GetByID(context.Background(), message.ID)
	require.Error(t, err)
}
