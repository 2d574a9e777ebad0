package dto

import (
	"time"

	"github.com/TinsuJembere/shelearns-api/internal/models"
)

// BlogSubmitRequest is the payload for creating a story.
type BlogSubmitRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

// BlogUpdateRequest is the payload for editing a story.
type BlogUpdateRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

// BlogAuthor is the trimmed author view on feed items.
type BlogAuthor struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// BlogPostResponse is the serialized representation of a story.
type BlogPostResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    BlogAuthor `json:"author"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewBlogPostResponse converts a blog post model into a DTO.
func NewBlogPostResponse(post models.BlogPost) BlogPostResponse {
	return BlogPostResponse{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Author: BlogAuthor{
			ID:     post.Author.ID,
			Name:   post.Author.Name,
			Role:   post.Author.Role,
			Avatar: post.Author.Avatar,
		},
		Status:    post.Status,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// NewBlogPostResponseSlice converts blog post models into DTOs.
func NewBlogPostResponseSlice(posts []models.BlogPost) []BlogPostResponse {
	out := make([]BlogPostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewBlogPostResponse(post))
	}
	return out
}
