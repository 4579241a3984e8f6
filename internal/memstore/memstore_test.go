package memstore

import (
	"context"
	"errors"
	"testing"

	"hotspot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(ids ...string) []*models.Notification {
	list := make([]*models.Notification, len(ids))
	for i, u := range ids {
		list[i] = &models.Notification{Type: "aviso", Title: "t", UserID: u}
	}
	return list
}

func TestCreateBatchAbortLeavesCallerUntouched(t *testing.T) {
	_, h := New()
	h.Notifications.FailBatchAt = 2
	list := batch("u1", "u2", "u3")

	err := h.Notifications.CreateBatch(context.Background(), list)
	require.Error(t, err)
	for _, n := range list {
		assert.Empty(t, n.ID)
		assert.True(t, n.CreatedAt.IsZero())
	}
	assert.Empty(t, h.Notifications.All())
}

func TestCreateBatchAssignsIDsOnCommit(t *testing.T) {
	_, h := New()
	list := batch("u1", "u2")
	list[1].ID = "fixed"

	require.NoError(t, h.Notifications.CreateBatch(context.Background(), list))
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "fixed", list[1].ID)
	assert.False(t, list[0].CreatedAt.IsZero())

	stored, err := h.Notifications.ListByUserID(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, list[0].ID, stored[0].ID)
	assert.Equal(t, list[0].CreatedAt, stored[0].CreatedAt)
}

func TestCreateFailsOnlyForConfiguredType(t *testing.T) {
	_, h := New()
	h.Notifications.FailTypes = map[string]error{"support_status": errors.New("quota")}
	ctx := context.Background()

	failing := &models.Notification{Type: "support_status", UserID: "u1"}
	assert.Error(t, h.Notifications.Create(ctx, failing))
	assert.Empty(t, failing.ID)

	require.NoError(t, h.Notifications.Create(ctx, &models.Notification{Type: "admin_reply", UserID: "u1"}))
	all := h.Notifications.All()
	require.Len(t, all, 1)
	assert.Equal(t, "admin_reply", all[0].Type)
}
