package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

var (
	// ErrBlogPostNotFound indicates the requested story does not exist.
	ErrBlogPostNotFound = errors.New("blog post not found")
	// ErrNotAuthor indicates the caller does not own the story.
	ErrNotAuthor = errors.New("only the author can modify this post")
)

// EventPublisher pushes invalidation signals into the realtime fan-out.
type EventPublisher interface {
	Publish(ctx context.Context, room, event string)
}

// BlogService manages community stories. Submitted stories go live
// immediately and trigger a realtime signal to subscribed clients.
type BlogService interface {
	Submit(ctx context.Context, authorID uint, payload dto.BlogSubmitRequest) (dto.BlogPostResponse, error)
	Get(ctx context.Context, postID uint) (dto.BlogPostResponse, error)
	List(ctx context.Context) ([]dto.BlogPostResponse, error)
	Update(ctx context.Context, postID, authorID uint, payload dto.BlogUpdateRequest) (dto.BlogPostResponse, error)
	Delete(ctx context.Context, postID, authorID uint) error
}

type blogService struct {
	posts     repository.BlogRepository
	events    EventPublisher
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewBlogService constructs the blog service.
func NewBlogService(posts repository.BlogRepository, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) BlogService {
	return &blogService{
		posts:     posts,
		events:    events,
		sanitizer: bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "blog_service").Logger(),
	}
}

func (s *blogService) Submit(ctx context.Context, authorID uint, payload dto.BlogSubmitRequest) (dto.BlogPostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BlogPostResponse{}, err
	}

	post := models.BlogPost{
		Title:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Content:  s.sanitizer.Sanitize(payload.Content),
		AuthorID: authorID,
		Status:   models.BlogStatusApproved,
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		return dto.BlogPostResponse{}, err
	}

	created, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return dto.BlogPostResponse{}, err
	}

	s.logger.Info().Uint("post_id", post.ID).Uint("author_id", authorID).Msg("blog post published")

	if s.events != nil {
		s.events.Publish(ctx, RoomBlogUpdates, EventNewBlogPost)
	}

	return dto.NewBlogPostResponse(created), nil
}

func (s *blogService) Get(ctx context.Context, postID uint) (dto.BlogPostResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BlogPostResponse{}, ErrBlogPostNotFound
		}
		return dto.BlogPostResponse{}, err
	}
	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) List(ctx context.Context) ([]dto.BlogPostResponse, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewBlogPostResponseSlice(posts), nil
}

func (s *blogService) Update(ctx context.Context, postID, authorID uint, payload dto.BlogUpdateRequest) (dto.BlogPostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BlogPostResponse{}, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BlogPostResponse{}, ErrBlogPostNotFound
		}
		return dto.BlogPostResponse{}, err
	}
	if post.AuthorID != authorID {
		return dto.BlogPostResponse{}, ErrNotAuthor
	}

	post.Title = strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	post.Content = s.sanitizer.Sanitize(payload.Content)
	if err := s.posts.Update(ctx, &post); err != nil {
		return dto.BlogPostResponse{}, err
	}

	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) Delete(ctx context.Context, postID, authorID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlogPostNotFound
		}
		return err
	}
	if post.AuthorID != authorID {
		return ErrNotAuthor
	}
	return s.posts.Delete(ctx, post.ID)
}
