package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminReply struct {
	Text      string    `json:"text" firestore:"text"`
	AdminID   string    `json:"adminId,omitempty" firestore:"adminId,omitempty"`
	RepliedAt time.Time `json:"repliedAt" firestore:"repliedAt"`
}

type SupportTicket struct {
	ID          string      `gorm:"primaryKey;size:64" json:"id" firestore:"-"`
	UserID      string      `gorm:"size:128;not null;index" json:"userId" firestore:"userId"`
	Subject     string      `gorm:"size:255" json:"subject" firestore:"subject"`
	Description string      `gorm:"type:text" json:"description,omitempty" firestore:"description,omitempty"`
	Category    string      `gorm:"size:64" json:"category" firestore:"category"`
	Priority    string      `gorm:"size:32" json:"priority" firestore:"priority"`
	Status      string      `gorm:"size:20;not null;default:'open';index" json:"status" firestore:"status"`
	AdminReply  *AdminReply `gorm:"serializer:json;type:text" json:"adminReply,omitempty" firestore:"adminReply,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HasReply treats an empty reply object the same as a missing one.
func (t *SupportTicket) HasReply() bool {
	return t != nil && t.AdminReply != nil
}
