package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Referral records a user inviting someone by email.
type Referral struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id" firestore:"-"`
	ReferrerID    string    `gorm:"size:128;not null;index" json:"referrerId" firestore:"referrerId"`
	ReferredEmail string    `gorm:"size:255;not null" json:"referredEmail" firestore:"referredEmail"`
	Relationship  string    `gorm:"size:64" json:"relationship" firestore:"relationship"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}

func (Referral) TableName() string { return "referrals" }

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
