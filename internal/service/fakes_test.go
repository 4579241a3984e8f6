package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"hotspot/internal/events"
	"hotspot/internal/memstore"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) last(t *testing.T) events.Event {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.events)
	return b.events[len(b.events)-1]
}

type broadcast struct {
	to      string
	payload interface{}
}

type recordingHub struct {
	mu    sync.Mutex
	users []broadcast
	roles []broadcast
}

func (h *recordingHub) BroadcastToUser(userID string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, broadcast{userID, payload})
}

func (h *recordingHub) BroadcastToRole(role string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roles = append(h.roles, broadcast{role, payload})
}

type sentMail struct{ to, subject, body string }

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

type recordingPusher struct {
	tokens []string
	topics []string
	err    error
}

func (p *recordingPusher) SendToUser(ctx context.Context, token, notifType, title, body string, data map[string]interface{}) error {
	p.tokens = append(p.tokens, token)
	return p.err
}

func (p *recordingPusher) SendToTopic(ctx context.Context, topic, notifType, title, body string, data map[string]interface{}) error {
	p.topics = append(p.topics, topic)
	return p.err
}

type fakeUploader struct {
	folder, publicID string
	body             []byte
	err              error
}

func (u *fakeUploader) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, string, error) {
	if u.err != nil {
		return "", "", u.err
	}
	u.folder, u.publicID = folder, publicID
	u.body, _ = io.ReadAll(file)
	url := "https://cdn.example/" + folder + "/" + publicID
	return url, url, nil
}

type fakeIssuer struct{}

func (fakeIssuer) IssueAccessToken(userID, paymentID string, minutes int) (string, error) {
	return "tok-" + userID + "-" + paymentID, nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

type fixture struct {
	stores  *repository.Stores
	handles *memstore.Handles
	hub     *recordingHub
	mailer  *recordingMailer
	pusher  *recordingPusher
	notify  *NotificationService
	trigger *TriggerService
}

func newFixture(t *testing.T, opts ...TriggerOption) *fixture {
	t.Helper()
	stores, handles := memstore.New()
	f := &fixture{
		stores:  stores,
		handles: handles,
		hub:     &recordingHub{},
		mailer:  &recordingMailer{},
		pusher:  &recordingPusher{},
	}
	log := zap.NewNop()
	f.notify = NewNotificationService(stores.Notifications, stores.Users, log,
		WithBroadcaster(f.hub),
		WithMailer(f.mailer, "admin@wifi.zone"),
		WithPusher(f.pusher),
	)
	opts = append([]TriggerOption{WithPaymentFeed(f.hub)}, opts...)
	f.trigger = NewTriggerService(f.notify, stores.Users, log, opts...)
	return f
}

func (f *fixture) addUser(t *testing.T, id, username string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Username: username, Email: username + "@mail.test", FCMToken: "fcm-" + id}
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) userNotifications(t *testing.T, userID string) []models.Notification {
	t.Helper()
	list, err := f.stores.Notifications.ListByUserID(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	return list
}

func (f *fixture) adminNotifications(t *testing.T) []models.Notification {
	t.Helper()
	list, err := f.stores.Notifications.ListAdmin(context.Background(), 0, 0)
	require.NoError(t, err)
	return list
}

func receipt() io.Reader {
	return bytes.NewReader([]byte("\x89PNG fake receipt"))
}
