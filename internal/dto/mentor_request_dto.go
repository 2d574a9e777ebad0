package dto

import (
	"time"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// MentorRequestCreateRequest asks a mentor for mentorship.
type MentorRequestCreateRequest struct {
	MentorID uint `json:"mentorId" validate:"required"`
}

// MentorRequestUpdateRequest carries the mentor's decision.
type MentorRequestUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// MentorRequestResponse is the serialized representation of a mentor request
// with both sides populated for rendering.
type MentorRequestResponse struct {
	ID        uint                `json:"id"`
	Student   ParticipantResponse `json:"student"`
	Mentor    ParticipantResponse `json:"mentor"`
	Status    string              `json:"status"`
	Notified  bool                `json:"notified"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewMentorRequestResponse converts a mentor request model into a DTO.
func NewMentorRequestResponse(request models.MentorRequest) MentorRequestResponse {
	return MentorRequestResponse{
		ID:        request.ID,
		Student:   NewParticipantResponse(request.Student),
		Mentor:    NewParticipantResponse(request.Mentor),
		Status:    request.Status,
		Notified:  request.Notified,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

// NewMentorRequestResponseSlice converts mentor request models into DTOs.
func NewMentorRequestResponseSlice(requests []models.MentorRequest) []MentorRequestResponse {
	out := make([]MentorRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewMentorRequestResponse(request))
	}
	return out
}
