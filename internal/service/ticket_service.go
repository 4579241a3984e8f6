package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"
)

type TicketService struct {
	tickets repository.TicketStore
	bus     Publisher
	now     func() time.Time
}

func NewTicketService(tickets repository.TicketStore, bus Publisher) *TicketService {
	return &TicketService{tickets: tickets, bus: bus, now: time.Now}
}

type CreateTicketInput struct {
	UserID      string `json:"userId" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=255"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*models.SupportTicket, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	t := &models.SupportTicket{
		UserID:      in.UserID,
		Subject:     in.Subject,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	after := *t
	s.bus.Publish(events.Event{
		Collection: domain.CollectionTickets,
		Kind:       events.Created,
		DocID:      t.ID,
		Version:    version(events.Created, t.CreatedAt.UnixNano()),
		After:      &after,
	})
	return t, nil
}

// UpdateTicketInput changes the status, the reply, or both. Nil fields are
// left alone.
type UpdateTicketInput struct {
	Status  *string `json:"status"`
	Reply   *string `json:"reply"`
	AdminID string  `json:"-"`
}

func (s *TicketService) Update(ctx context.Context, id string, in UpdateTicketInput) (*models.SupportTicket, error) {
	if in.Status == nil && in.Reply == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}
	if in.Status != nil && !domain.IsTicketStatus(*in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, *in.Status)
	}
	if in.Reply != nil && strings.TrimSpace(*in.Reply) == "" {
		return nil, fmt.Errorf("%w: reply is empty", ErrInvalidRequest)
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t
	if t.AdminReply != nil {
		r := *t.AdminReply
		before.AdminReply = &r
	}

	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Reply != nil {
		t.AdminReply = &models.AdminReply{Text: *in.Reply, AdminID: in.AdminID, RepliedAt: s.now()}
	}
	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, err
	}
	after := *t
	s.bus.Publish(events.Event{
		Collection: domain.CollectionTickets,
		Kind:       events.Updated,
		DocID:      t.ID,
		Version:    version(events.Updated, t.UpdatedAt.UnixNano()),
		Before:     &before,
		After:      &after,
	})
	return t, nil
}

func (s *TicketService) List(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	return s.tickets.List(ctx, userID, limit, offset)
}
