package service

import (
	"context"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"
)

type PostService struct {
	posts repository.PostStore
	bus   Publisher
}

func NewPostService(posts repository.PostStore, bus Publisher) *PostService {
	return &PostService{posts: posts, bus: bus}
}

type CreatePostInput struct {
	AuthorID string `json:"authorId" validate:"required"`
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.BulletinPost, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	p := &models.BulletinPost{
		AuthorID: in.AuthorID,
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Priority: in.Priority,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	after := *p
	s.bus.Publish(events.Event{
		Collection: domain.CollectionPosts,
		Kind:       events.Created,
		DocID:      p.ID,
		Version:    version(events.Created, p.CreatedAt.UnixNano()),
		After:      &after,
	})
	return p, nil
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]models.BulletinPost, error) {
	return s.posts.List(ctx, limit, offset)
}
