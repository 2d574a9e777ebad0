package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

var (
	// ErrMentorNotFound indicates the requested mentor account does not exist.
	ErrMentorNotFound = errors.New("mentor not found")
	// ErrNotAMentor indicates the target account is not a mentor profile.
	ErrNotAMentor = errors.New("target user is not a mentor")
	// ErrRequestNotFound indicates the mentorship request does not exist.
	ErrRequestNotFound = errors.New("mentorship request not found")
	// ErrRequestPending indicates the student already has a pending request to this mentor.
	ErrRequestPending = errors.New("a pending request to this mentor already exists")
	// ErrNotRequestMentor indicates the caller is not the mentor the request targets.
	ErrNotRequestMentor = errors.New("only the targeted mentor can respond to this request")
	// ErrRequestAlreadyResolved indicates the request was already accepted or rejected.
	ErrRequestAlreadyResolved = errors.New("request has already been resolved")
)

// MentorRequestService handles student→mentor mentorship requests.
type MentorRequestService interface {
	Create(ctx context.Context, studentID uint, payload dto.MentorRequestCreateRequest) (dto.MentorRequestResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.MentorRequestResponse, error)
	Respond(ctx context.Context, requestID, mentorID uint, payload dto.MentorRequestUpdateRequest) (dto.MentorRequestResponse, error)
	MarkNotified(ctx context.Context, requestID, studentID uint) error
}

type mentorRequestService struct {
	requests  repository.MentorRequestRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMentorRequestService constructs the mentorship-request service.
func NewMentorRequestService(requests repository.MentorRequestRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) MentorRequestService {
	return &mentorRequestService{
		requests:  requests,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "mentor_request_service").Logger(),
	}
}

func (s *mentorRequestService) Create(ctx context.Context, studentID uint, payload dto.MentorRequestCreateRequest) (dto.MentorRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MentorRequestResponse{}, err
	}

	mentor, err := s.users.GetByID(ctx, payload.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MentorRequestResponse{}, ErrMentorNotFound
		}
		return dto.MentorRequestResponse{}, err
	}
	if mentor.Role != models.RoleMentor {
		return dto.MentorRequestResponse{}, ErrNotAMentor
	}

	pending, err := s.requests.HasPending(ctx, studentID, mentor.ID)
	if err != nil {
		return dto.MentorRequestResponse{}, err
	}
	if pending {
		return dto.MentorRequestResponse{}, ErrRequestPending
	}

	request := models.MentorRequest{
		StudentID: studentID,
		MentorID:  mentor.ID,
		Status:    models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, &request); err != nil {
		return dto.MentorRequestResponse{}, err
	}

	created, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		return dto.MentorRequestResponse{}, err
	}

	s.logger.Info().Uint("request_id", request.ID).Uint("student_id", studentID).Uint("mentor_id", mentor.ID).Msg("mentorship request created")

	return dto.NewMentorRequestResponse(created), nil
}

func (s *mentorRequestService) ListForUser(ctx context.Context, userID uint) ([]dto.MentorRequestResponse, error) {
	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewMentorRequestResponseSlice(requests), nil
}

// Respond lets the targeted mentor accept or reject a pending request.
func (s *mentorRequestService) Respond(ctx context.Context, requestID, mentorID uint, payload dto.MentorRequestUpdateRequest) (dto.MentorRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MentorRequestResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MentorRequestResponse{}, ErrRequestNotFound
		}
		return dto.MentorRequestResponse{}, err
	}
	if request.MentorID != mentorID {
		return dto.MentorRequestResponse{}, ErrNotRequestMentor
	}
	if request.Status != models.RequestStatusPending {
		return dto.MentorRequestResponse{}, ErrRequestAlreadyResolved
	}

	request.Status = payload.Status
	request.Notified = false
	if err := s.requests.Update(ctx, &request); err != nil {
		return dto.MentorRequestResponse{}, err
	}

	s.logger.Info().Uint("request_id", request.ID).Str("status", request.Status).Msg("mentorship request resolved")

	return dto.NewMentorRequestResponse(request), nil
}

// MarkNotified records that the student has seen the decision, so the
// client stops surfacing it as a fresh notification.
func (s *mentorRequestService) MarkNotified(ctx context.Context, requestID, studentID uint) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.StudentID != studentID {
		return ErrRequestNotFound
	}
	if request.Notified {
		return nil
	}

	request.Notified = true
	return s.requests.Update(ctx, &request)
}
