package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIgnoresCoreKeysInExtra(t *testing.T) {
	n := &Notification{
		Type:                "payment_submission",
		Title:               "Nuevo pago recibido",
		IsAdminNotification: true,
		Extra: map[string]interface{}{
			"paymentId":           "p1",
			"userId":              "u1",
			"isAdminNotification": false,
			"type":                "spoofed",
		},
	}
	require.NoError(t, n.Validate())

	doc := n.Document()
	assert.NotContains(t, doc, "userId")
	assert.Equal(t, true, doc["isAdminNotification"])
	assert.Equal(t, "payment_submission", doc["type"])
	assert.Equal(t, "p1", doc["paymentId"])

	back := NotificationFromDocument("n1", doc)
	assert.NoError(t, back.Validate())
	assert.Empty(t, back.UserID)
	assert.Equal(t, map[string]interface{}{"paymentId": "p1"}, back.Extra)
}

func TestNotificationJSONIsFlat(t *testing.T) {
	n := Notification{ID: "n1", Type: "mention", UserID: "u2", FromUserID: "u1",
		Extra: map[string]interface{}{"postId": "post1"}}

	b, err := json.Marshal(n)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "n1", out["id"])
	assert.Equal(t, "u2", out["userId"])
	assert.Equal(t, "u1", out["fromUserId"])
	assert.Equal(t, "post1", out["postId"])
}

func TestValidateAddressing(t *testing.T) {
	assert.NoError(t, (&Notification{UserID: "u1"}).Validate())
	assert.NoError(t, (&Notification{IsAdminNotification: true}).Validate())
	assert.ErrorIs(t, (&Notification{}).Validate(), ErrInvalidAddressing)
	assert.ErrorIs(t, (&Notification{UserID: "u1", IsAdminNotification: true}).Validate(), ErrInvalidAddressing)
}
