package repository

import (
	"context"

	"hotspot/internal/models"

	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TicketRepository) Update(ctx context.Context, t *models.SupportTicket) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TicketRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	q := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var list []models.SupportTicket
	err := q.Order("created_at DESC").Scopes(paginate(limit, offset)).Find(&list).Error
	return list, err
}
