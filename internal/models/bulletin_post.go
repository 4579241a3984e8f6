package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BulletinPost content may carry @all and @username tokens.
type BulletinPost struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" firestore:"-"`
	AuthorID  string    `gorm:"size:128;not null;index" json:"authorId" firestore:"authorId"`
	Title     string    `gorm:"size:255" json:"title" firestore:"title"`
	Content   string    `gorm:"type:text" json:"content" firestore:"content"`
	Category  string    `gorm:"size:64" json:"category" firestore:"category"`
	Priority  string    `gorm:"size:32" json:"priority" firestore:"priority"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func (BulletinPost) TableName() string {
	return "bulletin_posts"
}

func (p *BulletinPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
