package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// MentorRequestRepository persists mentorship requests.
type MentorRequestRepository interface {
	Create(ctx context.Context, request *models.MentorRequest) error
	GetByID(ctx context.Context, id uint) (models.MentorRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.MentorRequest, error)
	HasPending(ctx context.Context, studentID, mentorID uint) (bool, error)
	Update(ctx context.Context, request *models.MentorRequest) error
}

type mentorRequestRepository struct {
	db *gorm.DB
}

// NewMentorRequestRepository constructs a mentor request repository backed by GORM.
func NewMentorRequestRepository(db *gorm.DB) MentorRequestRepository {
	return &mentorRequestRepository{db: db}
}

func (r *mentorRequestRepository) Create(ctx context.Context, request *models.MentorRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *mentorRequestRepository) GetByID(ctx context.Context, id uint) (models.MentorRequest, error) {
	var request models.MentorRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Mentor").
		First(&request, id).Error
	if err != nil {
		return models.MentorRequest{}, err
	}
	return request, nil
}

// ListByUser returns requests where the user appears on either side.
func (r *mentorRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.MentorRequest, error) {
	var requests []models.MentorRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Mentor").
		Where("student_id = ? OR mentor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *mentorRequestRepository) HasPending(ctx context.Context, studentID, mentorID uint) (bool, error) {
	var request models.MentorRequest
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND mentor_id = ? AND status = ?", studentID, mentorID, models.RequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *mentorRequestRepository) Update(ctx context.Context, request *models.MentorRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}
