package repository

import (
	"context"

	"hotspot/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// CreateBatch inserts the whole list inside one transaction.
func (r *NotificationRepository) CreateBatch(ctx context.Context, list []*models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(list, 100).Error
	})
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_admin_notification = ?", userID, false).
		Order("created_at DESC").Scopes(paginate(limit, offset)).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) ListAdmin(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).Where("is_admin_notification = ?", true).
		Order("created_at DESC").Scopes(paginate(limit, offset)).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id)
	if userID == "" {
		q = q.Where("is_admin_notification = ?", true)
	} else {
		q = q.Where("user_id = ?", userID)
	}
	var n models.Notification
	if err := q.Session(&gorm.Session{}).First(&n).Error; err != nil {
		return notFound(err)
	}
	return r.db.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

// NewGormStores wires every MySQL-backed repository.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:         NewUserRepository(db),
		Payments:      NewPaymentRepository(db),
		Tickets:       NewTicketRepository(db),
		Posts:         NewPostRepository(db),
		Referrals:     NewReferralRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
