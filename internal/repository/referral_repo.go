package repository

import (
	"context"

	"hotspot/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create persists a new referral.
func (r *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

// ListByReferrerID returns the referrals sent by referrerID, newest first.
func (r *ReferralRepository) ListByReferrerID(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Scopes(paginate(limit, offset)).
		Find(&list).Error
	return list, err
}
