package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User id equals the auth subject. Username is unique by convention only.
type User struct {
	ID        string    `gorm:"primaryKey;size:128" json:"id" firestore:"-"`
	Username  string    `gorm:"size:64;index" json:"username,omitempty" firestore:"username,omitempty"`
	Email     string    `gorm:"size:255;index" json:"email" firestore:"email"`
	FCMToken  string    `gorm:"size:512" json:"-" firestore:"fcmToken,omitempty"` // push notifications
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName is what notifications show for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return "Usuario desconocido"
	}
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return "Usuario desconocido"
}
