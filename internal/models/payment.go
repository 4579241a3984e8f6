package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is a SINPE receipt submitted by a user. Status moves from pending to
// approved or rejected exactly once. The access token is never serialized to
// clients; the submitter redeems it with ClaimKey, which is returned once by
// the submit call and only its hash is stored.
type Payment struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id" firestore:"-"`
	UserID          string    `gorm:"size:128;not null;index" json:"userId" firestore:"userId"`
	SinpeID         string    `gorm:"size:64" json:"sinpeId" firestore:"sinpeId"`
	ReceiptImageURL string    `gorm:"size:512" json:"receiptImageUrl" firestore:"receiptImageUrl"`
	Status          string    `gorm:"size:20;not null;index" json:"status" firestore:"status"`
	PackageName     string    `gorm:"size:128" json:"packageName" firestore:"packageName"`
	Price           float64   `json:"price" firestore:"price"`
	DurationMinutes int       `json:"durationMinutes" firestore:"durationMinutes"`
	Token           string    `gorm:"type:text" json:"-" firestore:"token,omitempty"`
	ClaimKeyHash    string    `gorm:"size:100" json:"-" firestore:"claimKeyHash,omitempty"`
	ClaimKey        string    `gorm:"-" json:"claimKey,omitempty" firestore:"-"`
	AdminReply      string    `gorm:"type:text" json:"adminReply,omitempty" firestore:"adminReply,omitempty"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
