package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

const maxAvatarBytes = 5 * 1024 * 1024

var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMentorOnlyField indicates a student tried to set mentor-only profile fields.
	ErrMentorOnlyField = errors.New("field is reserved for mentor profiles")
)

// ProfileService reads and updates account profiles.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Update(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uint, fileName string, file io.Reader, size int64) (dto.AvatarResponse, error)
	ListUsers(ctx context.Context) ([]dto.ProfileResponse, error)
	ListMentors(ctx context.Context) ([]dto.ProfileResponse, error)
}

type profileService struct {
	users     repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(user), nil
}

func (s *profileService) Update(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	if user.Role != models.RoleMentor && (payload.Expertise != nil || payload.Stats != nil) {
		return dto.ProfileResponse{}, ErrMentorOnlyField
	}

	if payload.Name != nil {
		if name := strings.TrimSpace(*payload.Name); name != "" {
			user.Name = name
		}
	}
	if payload.Avatar != nil {
		user.Avatar = *payload.Avatar
	}
	if payload.Bio != nil {
		user.Bio = *payload.Bio
	}
	if payload.Skills != nil {
		user.Skills = datatypes.JSONSlice[string](*payload.Skills)
	}
	if payload.Languages != nil {
		user.Languages = datatypes.JSONSlice[string](*payload.Languages)
	}
	if payload.Expertise != nil {
		user.Expertise = datatypes.JSONSlice[string](*payload.Expertise)
	}
	if payload.Achievements != nil {
		achievements := make([]models.Achievement, 0, len(*payload.Achievements))
		for _, a := range *payload.Achievements {
			achievements = append(achievements, models.Achievement{Title: a.Title, Date: a.Date})
		}
		user.Achievements = datatypes.JSONSlice[models.Achievement](achievements)
	}
	if payload.Stats != nil {
		user.Stats = datatypes.NewJSONType(*payload.Stats)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("profile updated")

	return dto.NewProfileResponse(user), nil
}

// UploadAvatar stores a new avatar image and persists its URL on the profile.
func (s *profileService) UploadAvatar(ctx context.Context, userID uint, fileName string, file io.Reader, size int64) (dto.AvatarResponse, error) {
	if file == nil {
		return dto.AvatarResponse{}, ErrFileRequired
	}
	if size > maxAvatarBytes {
		return dto.AvatarResponse{}, ErrFileTooLarge
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AvatarResponse{}, ErrUserNotFound
		}
		return dto.AvatarResponse{}, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return dto.AvatarResponse{}, err
	}
	if int64(len(data)) > maxAvatarBytes {
		return dto.AvatarResponse{}, ErrFileTooLarge
	}

	if detected := mimetype.Detect(data); !strings.HasPrefix(detected.String(), "image/") {
		return dto.AvatarResponse{}, ErrFileTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, sanitizeFileName(fileName), bytes.NewReader(data))
	if err != nil {
		return dto.AvatarResponse{}, err
	}

	user.Avatar = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.AvatarResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("avatar updated")

	return dto.AvatarResponse{URL: url}, nil
}

// ListUsers returns every account, used by the chat partner picker.
func (s *profileService) ListUsers(ctx context.Context) ([]dto.ProfileResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewProfileResponseSlice(users), nil
}

// ListMentors returns every mentor profile for the discovery page.
func (s *profileService) ListMentors(ctx context.Context) ([]dto.ProfileResponse, error) {
	mentors, err := s.users.ListByRole(ctx, models.RoleMentor)
	if err != nil {
		return nil, err
	}
	return dto.NewProfileResponseSlice(mentors), nil
}
