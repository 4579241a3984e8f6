package service

import (
	"context"
	"errors"
	"testing"

	"hotspot/internal/domain"
	"hotspot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyAdminStoresAndFansOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.addUser(t, "u1", "ana")

	n, err := f.notify.NotifyAdmin(ctx, domain.NotificationReferral, "Nueva referencia", "ana refirió a x", u,
		map[string]interface{}{"referralId": "r1", "skipped": nil})
	require.NoError(t, err)
	assert.True(t, n.IsAdminNotification)
	assert.Empty(t, n.UserID)
	assert.Equal(t, "u1", n.FromUserID)
	assert.Equal(t, "ana", n.Extra["userName"])
	assert.Equal(t, "ana@mail.test", n.Extra["userEmail"])
	assert.NotContains(t, n.Extra, "skipped")

	assert.Len(t, f.adminNotifications(t), 1)
	require.Len(t, f.hub.roles, 1)
	assert.Equal(t, domain.RoleAdmin, f.hub.roles[0].to)
	assert.Equal(t, []string{adminTopic}, f.pusher.topics)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "admin@wifi.zone", f.mailer.sent[0].to)
}

func TestNotifyAdminSideEffectFailuresAreIgnored(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	f.pusher.err = errors.New("fcm down")

	_, err := f.notify.NotifyAdmin(context.Background(), domain.NotificationSupportTicket, "t", "d", nil, nil)
	require.NoError(t, err)
	assert.Len(t, f.adminNotifications(t), 1)
}

func TestNotifyUserHoistsSender(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u2", "bob")

	n, err := f.notify.NotifyUser(context.Background(), "u2", domain.NotificationMention, "t", "d",
		map[string]interface{}{"postId": "p1", "fromUserId": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", n.FromUserID)
	assert.NotContains(t, n.Extra, "fromUserId")
	assert.False(t, n.IsAdminNotification)

	assert.Len(t, f.userNotifications(t, "u2"), 1)
	assert.Equal(t, []string{"fcm-u2"}, f.pusher.tokens)
	require.Len(t, f.hub.users, 1)
	assert.Equal(t, "u2", f.hub.users[0].to)
}

func TestNotifyUserRejectsMissingRecipient(t *testing.T) {
	f := newFixture(t)
	_, err := f.notify.NotifyUser(context.Background(), "", domain.NotificationMention, "t", "d", nil)
	assert.ErrorIs(t, err, models.ErrInvalidAddressing)
	assert.Empty(t, f.handles.Notifications.All())
}

func TestNotifyAllExcludesSender(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "ana")
	f.addUser(t, "u2", "bob")
	f.addUser(t, "u3", "carol")

	n, err := f.notify.NotifyAll(context.Background(), domain.NotificationBulletinAnnouncement, "Anuncio", "d", "u1",
		map[string]interface{}{"postId": "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Empty(t, f.userNotifications(t, "u1"))
	for _, id := range []string{"u2", "u3"} {
		list := f.userNotifications(t, id)
		require.Len(t, list, 1)
		assert.Equal(t, "u1", list[0].FromUserID)
		assert.Equal(t, "p1", list[0].Extra["postId"])
	}
}

func TestNotifyAllIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "ana")
	f.addUser(t, "u2", "bob")
	f.addUser(t, "u3", "carol")
	f.handles.Notifications.FailBatchAt = 2

	n, err := f.notify.NotifyAll(context.Background(), domain.NotificationBulletinAnnouncement, "Anuncio", "d", "", nil)
	assert.ErrorIs(t, err, ErrBatchWrite)
	assert.Zero(t, n)
	assert.Empty(t, f.handles.Notifications.All())
	assert.Empty(t, f.hub.users)
}

func TestNotifyAllWithNoRecipients(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "ana")

	n, err := f.notify.NotifyAll(context.Background(), domain.NotificationBulletinAnnouncement, "Anuncio", "d", "u1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSendManual(t *testing.T) {
	ctx := context.Background()

	t.Run("to users", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.notify.SendManual(ctx, ManualRequest{
			Type: "announcement", Title: "Hola", Description: "d",
			UserIDs: []string{"u1", "", "u2"}, SentBy: "admin@wifi.zone",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Count)
		assert.False(t, res.Admin)
		assert.Len(t, f.userNotifications(t, "u1"), 1)
		assert.Len(t, f.userNotifications(t, "u2"), 1)
		assert.Empty(t, f.adminNotifications(t))
	})

	t.Run("users win over admin flag", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.notify.SendManual(ctx, ManualRequest{
			Type: "announcement", Title: "Hola", UserIDs: []string{"u1"}, IsAdminNotification: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)
		assert.Empty(t, f.adminNotifications(t))
	})

	t.Run("to admins", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.notify.SendManual(ctx, ManualRequest{Type: "system", Title: "Hola", IsAdminNotification: true})
		require.NoError(t, err)
		assert.True(t, res.Admin)
		assert.Len(t, f.adminNotifications(t), 1)
	})

	t.Run("no addressing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.notify.SendManual(ctx, ManualRequest{Type: "system", Title: "Hola", UserIDs: []string{""}})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, f.handles.Notifications.All())
	})

	t.Run("missing title", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.notify.SendManual(ctx, ManualRequest{Type: "system", IsAdminNotification: true})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("batch failure writes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.handles.Notifications.FailBatchAt = 1
		_, err := f.notify.SendManual(ctx, ManualRequest{Type: "system", Title: "Hola", UserIDs: []string{"u1", "u2"}})
		assert.ErrorIs(t, err, ErrBatchWrite)
		assert.Empty(t, f.handles.Notifications.All())
	})
}

func TestMarkReadScopesToRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, err := f.notify.NotifyUser(ctx, "u1", domain.NotificationMention, "t", "d", nil)
	require.NoError(t, err)

	assert.Error(t, f.notify.MarkRead(ctx, n.ID, "u2"))
	require.NoError(t, f.notify.MarkRead(ctx, n.ID, "u1"))

	list, err := f.notify.ListForUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
