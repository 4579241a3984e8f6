package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidAddressing is returned for a notification that is neither
// admin-facing nor addressed to exactly one user.
var ErrInvalidAddressing = errors.New("notification must target either admins or a single user")

// Notification is addressed either to admins (IsAdminNotification, no UserID)
// or to one user (UserID set). Extra carries the type-specific payload and is
// flattened into the top level when serialized.
type Notification struct {
	ID                  string                 `gorm:"primaryKey;size:64" json:"id"`
	Type                string                 `gorm:"size:50;not null;index" json:"type"`
	Title               string                 `gorm:"size:255" json:"title"`
	Description         string                 `gorm:"type:text" json:"description"`
	UserID              string                 `gorm:"size:128;index" json:"userId,omitempty"`
	FromUserID          string                 `gorm:"size:128" json:"fromUserId,omitempty"`
	IsAdminNotification bool                   `gorm:"not null;default:false;index" json:"isAdminNotification"`
	IsRead              bool                   `gorm:"not null;default:false" json:"isRead"`
	Extra               map[string]interface{} `gorm:"serializer:json;type:text" json:"-"`
	CreatedAt           time.Time              `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

func (n *Notification) Validate() error {
	if n.IsAdminNotification == (n.UserID != "") {
		return ErrInvalidAddressing
	}
	return nil
}

// Document is the flat representation stored in document databases and
// returned to clients. Extra never overrides or adds a core field, so an
// admin notification cannot pick up a userId through its payload.
func (n *Notification) Document() map[string]interface{} {
	doc := make(map[string]interface{}, len(n.Extra)+9)
	for k, v := range n.Extra {
		if coreNotificationKeys[k] {
			continue
		}
		doc[k] = v
	}
	doc["type"] = n.Type
	doc["title"] = n.Title
	doc["description"] = n.Description
	doc["isAdminNotification"] = n.IsAdminNotification
	doc["isRead"] = n.IsRead
	doc["createdAt"] = n.CreatedAt
	if n.UserID != "" {
		doc["userId"] = n.UserID
	}
	if n.FromUserID != "" {
		doc["fromUserId"] = n.FromUserID
	}
	return doc
}

func (n Notification) MarshalJSON() ([]byte, error) {
	doc := n.Document()
	doc["id"] = n.ID
	return json.Marshal(doc)
}

var coreNotificationKeys = map[string]bool{
	"id": true, "type": true, "title": true, "description": true, "userId": true,
	"fromUserId": true, "isAdminNotification": true, "isRead": true, "createdAt": true,
}

// NotificationFromDocument rebuilds a Notification from its flat form.
func NotificationFromDocument(id string, doc map[string]interface{}) *Notification {
	n := &Notification{ID: id}
	n.Type, _ = doc["type"].(string)
	n.Title, _ = doc["title"].(string)
	n.Description, _ = doc["description"].(string)
	n.UserID, _ = doc["userId"].(string)
	n.FromUserID, _ = doc["fromUserId"].(string)
	n.IsAdminNotification, _ = doc["isAdminNotification"].(bool)
	n.IsRead, _ = doc["isRead"].(bool)
	n.CreatedAt, _ = doc["createdAt"].(time.Time)
	for k, v := range doc {
		if coreNotificationKeys[k] {
			continue
		}
		if n.Extra == nil {
			n.Extra = make(map[string]interface{})
		}
		n.Extra[k] = v
	}
	return n
}
