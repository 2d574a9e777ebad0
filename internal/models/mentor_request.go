package models

import "time"

// Lifecycle states for a mentor request.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// MentorRequest tracks a student asking a mentor for mentorship. Notified
// flips true once the student has seen the mentor's decision.
type MentorRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"index;not null" json:"student_id"`
	Student   User      `json:"student"`
	MentorID  uint      `gorm:"index;not null" json:"mentor_id"`
	Mentor    User      `json:"mentor"`
	Status    string    `gorm:"size:32;not null;default:pending" json:"status"`
	Notified  bool      `gorm:"not null;default:false" json:"notified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
