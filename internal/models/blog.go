package models

import "time"

// Moderation states for a blog post.
const (
	BlogStatusPending  = "pending"
	BlogStatusApproved = "approved"
	BlogStatusRejected = "rejected"
)

// BlogPost is a community story shown on the blog feed.
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Author    User      `json:"author"`
	Status    string    `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
