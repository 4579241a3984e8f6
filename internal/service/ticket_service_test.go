package service

import (
	"context"
	"testing"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTicketCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := NewTicketService(f.stores.Tickets, bus)
	ctx := context.Background()

	tk, err := svc.Create(ctx, CreateTicketInput{UserID: "u1", Subject: "Sin conexión", Category: "red", Priority: "alta"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
	assert.Equal(t, events.Created, bus.last(t).Kind)

	_, err = svc.Update(ctx, tk.ID, UpdateTicketInput{Reply: strPtr("Reinicia el router"), AdminID: "admin"})
	require.NoError(t, err)
	e := bus.last(t)
	assert.False(t, e.Before.(*models.SupportTicket).HasReply())
	assert.True(t, e.After.(*models.SupportTicket).HasReply())
	assert.Equal(t, "admin", e.After.(*models.SupportTicket).AdminReply.AdminID)

	_, err = svc.Update(ctx, tk.ID, UpdateTicketInput{Status: strPtr(domain.TicketStatusResolved), Reply: strPtr("Resuelto")})
	require.NoError(t, err)
	e = bus.last(t)
	assert.Equal(t, "Reinicia el router", e.Before.(*models.SupportTicket).AdminReply.Text)
	assert.Equal(t, "Resuelto", e.After.(*models.SupportTicket).AdminReply.Text)

	for _, ev := range bus.events {
		f.trigger.Handle(ctx, ev)
	}
	user := f.userNotifications(t, "u1")
	types := make([]string, 0, len(user))
	for _, n := range user {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []string{domain.NotificationAdminReply, domain.NotificationSupportStatus}, types)
	assert.Len(t, f.adminNotifications(t), 1)
}

func TestTicketUpdateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewTicketService(f.stores.Tickets, &recordingBus{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTicketInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	tk, err := svc.Create(ctx, CreateTicketInput{UserID: "u1", Subject: "x"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, tk.ID, UpdateTicketInput{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.Update(ctx, tk.ID, UpdateTicketInput{Status: strPtr("archived")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.Update(ctx, tk.ID, UpdateTicketInput{Reply: strPtr("  ")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReferralCreateNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := NewReferralService(f.stores.Referrals, bus)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateReferralInput{ReferrerID: "u1", ReferredEmail: "  Amiga@Mail.Test ", Relationship: "friend"})
	require.NoError(t, err)
	assert.Equal(t, "amiga@mail.test", r.ReferredEmail)
	assert.Equal(t, domain.CollectionReferrals, bus.last(t).Collection)

	_, err = svc.Create(ctx, CreateReferralInput{ReferrerID: "u1", ReferredEmail: "nope"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	list, err := svc.ListByReferrer(ctx, "u1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostCreatePublishes(t *testing.T) {
	f := newFixture(t)
	bus := &recordingBus{}
	svc := NewPostService(f.stores.Posts, bus)

	p, err := svc.Create(context.Background(), CreatePostInput{AuthorID: "u1", Title: "Aviso", Content: "@all mantenimiento"})
	require.NoError(t, err)
	e := bus.last(t)
	assert.Equal(t, domain.CollectionPosts, e.Collection)
	assert.Equal(t, p.ID, e.After.(*models.BulletinPost).ID)

	_, err = svc.Create(context.Background(), CreatePostInput{AuthorID: "u1", Title: "Aviso"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
