package dto

import (
	"time"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// ProfileUpdateRequest carries optional display-field updates. Which fields are
// applied depends on the caller's role; role and email are never updatable.
type ProfileUpdateRequest struct {
	Name         *string             `json:"name" validate:"omitempty,min=2,max=255"`
	Avatar       *string             `json:"avatar" validate:"omitempty,max=512"`
	Bio          *string             `json:"bio" validate:"omitempty,max=4000"`
	Skills       *[]string           `json:"skills" validate:"omitempty,dive,max=64"`
	Languages    *[]string           `json:"languages" validate:"omitempty,dive,max=64"`
	Expertise    *[]string           `json:"expertise" validate:"omitempty,dive,max=64"`
	Achievements *[]AchievementInput `json:"achievements" validate:"omitempty,dive"`
	Stats        *models.MentorStats `json:"stats"`
}

// AchievementInput is one mentor achievement entry in an update payload.
type AchievementInput struct {
	Title string `json:"title" validate:"required,max=255"`
	Date  string `json:"date" validate:"omitempty,max=64"`
}

// ProfileResponse is the full account view, credential excluded.
type ProfileResponse struct {
	ID           uint                 `json:"id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Role         string               `json:"role"`
	Avatar       string               `json:"avatar,omitempty"`
	Bio          string               `json:"bio,omitempty"`
	Skills       []string             `json:"skills"`
	Languages    []string             `json:"languages"`
	Expertise    []string             `json:"expertise,omitempty"`
	Achievements []models.Achievement `json:"achievements,omitempty"`
	Stats        models.MentorStats   `json:"stats"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// AvatarResponse returns the stored avatar location after an upload.
type AvatarResponse struct {
	URL string `json:"url"`
}

// NewProfileResponse converts a user model into the profile view.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Avatar:       user.Avatar,
		Bio:          user.Bio,
		Skills:       user.Skills,
		Languages:    user.Languages,
		Expertise:    user.Expertise,
		Achievements: user.Achievements,
		Stats:        user.Stats.Data(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// NewProfileResponseSlice converts user models into profile views.
func NewProfileResponseSlice(users []models.User) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewProfileResponse(user))
	}
	return out
}
