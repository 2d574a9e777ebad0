package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

func newProfileFixture(t *testing.T) (ProfileService, *gorm.DB, *fakeStorage) {
	t.Helper()
	db := setupTestDB(t)
	storage := &fakeStorage{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewProfileService(repository.NewUserRepository(db), storage, validate, testLogger())
	return svc, db, storage
}

func TestProfileUpdateAppliesPartialChanges(t *testing.T) {
	svc, db, _ := newProfileFixture(t)
	user := seedUser(t, db, "Hana")

	name := "Hana T."
	bio := "Learning Go"
	skills := []string{"go", "sql"}
	updated, err := svc.Update(context.Background(), user.ID, dto.ProfileUpdateRequest{
		Name:   &name,
		Bio:    &bio,
		Skills: &skills,
	})
	require.NoError(t, err)
	require.Equal(t, "Hana T.", updated.Name)
	require.Equal(t, "Learning Go", updated.Bio)
	require.Equal(t, []string{"go", "sql"}, updated.Skills)

	// Untouched fields survive a later partial update.
	languages := []string{"amharic", "english"}
	updated, err = svc.Update(context.Background(), user.ID, dto.ProfileUpdateRequest{Languages: &languages})
	require.NoError(t, err)
	require.Equal(t, "Hana T.", updated.Name)
	require.Equal(t, []string{"go", "sql"}, updated.Skills)
}

func TestProfileUpdateReplacesAchievements(t *testing.T) {
	svc, db, _ := newProfileFixture(t)
	mentor := seedMentor(t, db, "Marta")

	achievements := []dto.AchievementInput{
		{Title: "Go Bootcamp Mentor", Date: "2024-06"},
		{Title: "Hackathon Judge", Date: "2025-01"},
	}
	updated, err := svc.Update(context.Background(), mentor.ID, dto.ProfileUpdateRequest{Achievements: &achievements})
	require.NoError(t, err)
	require.Equal(t, []models.Achievement{
		{Title: "Go Bootcamp Mentor", Date: "2024-06"},
		{Title: "Hackathon Judge", Date: "2025-01"},
	}, updated.Achievements)

	// A later update replaces the list wholesale.
	achievements = []dto.AchievementInput{{Title: "Speaker", Date: "2025-03"}}
	_, err = svc.Update(context.Background(), mentor.ID, dto.ProfileUpdateRequest{Achievements: &achievements})
	require.NoError(t, err)

	profile, err := svc.Get(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.Equal(t, []models.Achievement{{Title: "Speaker", Date: "2025-03"}}, profile.Achievements)
}

func TestProfileMentorOnlyFieldsRejectedForStudents(t *testing.T) {
	svc, db, _ := newProfileFixture(t)
	student := seedUser(t, db, "Hana")
	mentor := seedMentor(t, db, "Marta")

	expertise := []string{"backend"}
	_, err := svc.Update(context.Background(), student.ID, dto.ProfileUpdateRequest{Expertise: &expertise})
	require.ErrorIs(t, err, ErrMentorOnlyField)

	updated, err := svc.Update(context.Background(), mentor.ID, dto.ProfileUpdateRequest{Expertise: &expertise})
	require.NoError(t, err)
	require.Equal(t, []string{"backend"}, updated.Expertise)
}

func TestUploadAvatarStoresImageAndRejectsOthers(t *testing.T) {
	svc, db, storage := newProfileFixture(t)
	user := seedUser(t, db, "Hana")

	result, err := svc.UploadAvatar(context.Background(), user.ID, "me.png", bytes.NewReader(pngBytes), int64(len(pngBytes)))
	require.NoError(t, err)
	require.NotEmpty(t, result.URL)
	require.Equal(t, 1, storage.uploads)

	profile, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, result.URL, profile.Avatar)

	_, err = svc.UploadAvatar(context.Background(), user.ID, "notes.txt", bytes.NewReader([]byte("plain text")), 10)
	require.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = svc.UploadAvatar(context.Background(), user.ID, "huge.png", bytes.NewReader(pngBytes), 50<<20)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestListMentorsReturnsOnlyMentors(t *testing.T) {
	svc, db, _ := newProfileFixture(t)
	seedUser(t, db, "Hana")
	seedMentor(t, db, "Marta")
	seedMentor(t, db, "Sena")

	mentors, err := svc.ListMentors(context.Background())
	require.NoError(t, err)
	require.Len(t, mentors, 2)
	for _, mentor := range mentors {
		require.Equal(t, models.RoleMentor, mentor.Role)
	}
}
