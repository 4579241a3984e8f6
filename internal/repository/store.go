package repository

import (
	"context"
	"errors"

	"hotspot/internal/models"
)

// ErrNotFound is returned by every store implementation for a missing document.
var ErrNotFound = errors.New("document not found")

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	// Save creates or replaces the user document.
	Save(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername returns the first user with exactly this username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type PaymentFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	List(ctx context.Context, f PaymentFilter) ([]models.Payment, error)
}

type TicketStore interface {
	Create(ctx context.Context, t *models.SupportTicket) error
	GetByID(ctx context.Context, id string) (*models.SupportTicket, error)
	Update(ctx context.Context, t *models.SupportTicket) error
	// List returns tickets of userID, or all tickets when userID is empty.
	List(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error)
}

type PostStore interface {
	Create(ctx context.Context, p *models.BulletinPost) error
	GetByID(ctx context.Context, id string) (*models.BulletinPost, error)
	List(ctx context.Context, limit, offset int) ([]models.BulletinPost, error)
}

type ReferralStore interface {
	Create(ctx context.Context, r *models.Referral) error
	ListByReferrerID(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	// CreateBatch writes all notifications or none of them.
	CreateBatch(ctx context.Context, list []*models.Notification) error
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	ListAdmin(ctx context.Context, limit, offset int) ([]models.Notification, error)
	// MarkRead flags a user's notification, or an admin notification when userID is empty.
	MarkRead(ctx context.Context, id, userID string) error
}

// Stores bundles one backend's collections.
type Stores struct {
	Users         UserStore
	Payments      PaymentStore
	Tickets       TicketStore
	Posts         PostStore
	Referrals     ReferralStore
	Notifications NotificationStore
}
