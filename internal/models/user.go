package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roles assignable to a user account. The role is fixed at registration.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

// Achievement is a single entry on a mentor profile.
type Achievement struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// MentorStats aggregates headline numbers shown on a mentor card.
type MentorStats struct {
	Mentorships int `json:"mentorships"`
	Students    int `json:"students"`
	Projects    int `json:"projects"`
}

// User represents a platform account, local or Google-backed.
type User struct {
	ID           uint                             `gorm:"primaryKey" json:"id"`
	Name         string                           `gorm:"size:255;not null" json:"name"`
	Email        string                           `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password     string                           `gorm:"size:255" json:"-"`
	GoogleID     *string                          `gorm:"size:64;uniqueIndex" json:"-"`
	Role         string                           `gorm:"size:32;not null" json:"role"`
	Avatar       string                           `gorm:"size:512" json:"avatar"`
	Bio          string                           `gorm:"type:text" json:"bio"`
	Skills       datatypes.JSONSlice[string]      `json:"skills"`
	Languages    datatypes.JSONSlice[string]      `json:"languages"`
	Expertise    datatypes.JSONSlice[string]      `json:"expertise"`
	Achievements datatypes.JSONSlice[Achievement] `json:"achievements"`
	Stats        datatypes.JSONType[MentorStats]  `json:"stats"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}
