package service

import (
	"context"
	"fmt"
	"time"

	"hotspot/internal/domain"
	"hotspot/internal/models"
	"hotspot/internal/repository"

	"go.uber.org/zap"
)

// Pusher delivers mobile push notifications.
type Pusher interface {
	SendToUser(ctx context.Context, fcmToken, notifType, title, body string, data map[string]interface{}) error
	SendToTopic(ctx context.Context, topic, notifType, title, body string, data map[string]interface{}) error
}

// Mailer sends plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Broadcaster pushes payloads to open realtime connections.
type Broadcaster interface {
	BroadcastToUser(userID string, payload interface{})
	BroadcastToRole(role string, payload interface{})
}

const adminTopic = "admins"

type NotificationService struct {
	repo       repository.NotificationStore
	users      repository.UserStore
	fcm        Pusher
	mail       Mailer
	adminEmail string
	hub        Broadcaster
	log        *zap.Logger
	now        func() time.Time
}

type NotificationOption func(*NotificationService)

func WithPusher(p Pusher) NotificationOption {
	return func(s *NotificationService) { s.fcm = p }
}

// WithMailer copies admin notifications to adminEmail.
func WithMailer(m Mailer, adminEmail string) NotificationOption {
	return func(s *NotificationService) {
		s.mail = m
		s.adminEmail = adminEmail
	}
}

func WithBroadcaster(b Broadcaster) NotificationOption {
	return func(s *NotificationService) { s.hub = b }
}

func NewNotificationService(repo repository.NotificationStore, users repository.UserStore, log *zap.Logger, opts ...NotificationOption) *NotificationService {
	s := &NotificationService{repo: repo, users: users, log: log.Named("notify"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func copyExtra(extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

func (s *NotificationService) persist(ctx context.Context, n *models.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	return s.repo.Create(ctx, n)
}

// NotifyAdmin stores one admin-facing notification. from may be nil when the
// sender is unknown; the notification then names an unknown user.
func (s *NotificationService) NotifyAdmin(ctx context.Context, notifType, title, description string, from *models.User, extra map[string]interface{}) (*models.Notification, error) {
	n := &models.Notification{
		Type:                notifType,
		Title:               title,
		Description:         description,
		IsAdminNotification: true,
		Extra:               copyExtra(extra),
	}
	n.Extra["userName"] = from.DisplayName()
	if from != nil {
		n.FromUserID = from.ID
		if from.Email != "" {
			n.Extra["userEmail"] = from.Email
		}
	}
	if err := s.persist(ctx, n); err != nil {
		return nil, err
	}
	s.fanOutAdmin(ctx, n)
	return n, nil
}

// NotifyUser stores one notification addressed to userID. A "fromUserId"
// entry in extra becomes the sender.
func (s *NotificationService) NotifyUser(ctx context.Context, userID, notifType, title, description string, extra map[string]interface{}) (*models.Notification, error) {
	n := &models.Notification{
		Type:        notifType,
		Title:       title,
		Description: description,
		UserID:      userID,
		Extra:       copyExtra(extra),
	}
	if from, ok := n.Extra["fromUserId"].(string); ok {
		n.FromUserID = from
		delete(n.Extra, "fromUserId")
	}
	if err := s.persist(ctx, n); err != nil {
		return nil, err
	}
	s.fanOutUser(ctx, n, nil)
	return n, nil
}

// NotifyAll addresses one notification to every user except fromUserID and
// commits them as a single batch. It returns how many were written.
func (s *NotificationService) NotifyAll(ctx context.Context, notifType, title, description, fromUserID string, extra map[string]interface{}) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list users: %v", ErrLookup, err)
	}
	now := s.now()
	list := make([]*models.Notification, 0, len(users))
	recipients := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID == fromUserID {
			continue
		}
		list = append(list, &models.Notification{
			Type:        notifType,
			Title:       title,
			Description: description,
			UserID:      u.ID,
			FromUserID:  fromUserID,
			Extra:       copyExtra(extra),
			CreatedAt:   now,
		})
		recipients = append(recipients, u)
	}
	if len(list) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateBatch(ctx, list); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBatchWrite, err)
	}
	for i, n := range list {
		s.fanOutUser(ctx, n, &recipients[i])
	}
	return len(list), nil
}

type ManualRequest struct {
	Type                string   `json:"type" validate:"required"`
	Title               string   `json:"title" validate:"required"`
	Description         string   `json:"description"`
	UserIDs             []string `json:"userIds"`
	IsAdminNotification bool     `json:"isAdminNotification"`
	SentBy              string   `json:"-"`
}

type ManualResult struct {
	Count int
	Admin bool
}

// SendManual fans out to UserIDs as one batch, or creates one admin
// notification when no user is given and IsAdminNotification is set.
func (s *NotificationService) SendManual(ctx context.Context, req ManualRequest) (*ManualResult, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	switch {
	case len(ids) > 0:
		now := s.now()
		list := make([]*models.Notification, 0, len(ids))
		for _, id := range ids {
			list = append(list, &models.Notification{
				Type:        req.Type,
				Title:       req.Title,
				Description: req.Description,
				UserID:      id,
				FromUserID:  req.SentBy,
				CreatedAt:   now,
			})
		}
		if err := s.repo.CreateBatch(ctx, list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBatchWrite, err)
		}
		for _, n := range list {
			s.fanOutUser(ctx, n, nil)
		}
		return &ManualResult{Count: len(list)}, nil
	case req.IsAdminNotification:
		if _, err := s.NotifyAdmin(ctx, req.Type, req.Title, req.Description, nil, nil); err != nil {
			return nil, err
		}
		return &ManualResult{Count: 1, Admin: true}, nil
	}
	return nil, fmt.Errorf("%w: userIds or isAdminNotification required", ErrInvalidRequest)
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) ListAdmin(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListAdmin(ctx, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// fanOutAdmin is best effort: the notification is already stored.
func (s *NotificationService) fanOutAdmin(ctx context.Context, n *models.Notification) {
	if s.hub != nil {
		s.hub.BroadcastToRole(domain.RoleAdmin, realtimePayload(n))
	}
	if s.fcm != nil {
		if err := s.fcm.SendToTopic(ctx, adminTopic, n.Type, n.Title, n.Description, n.Extra); err != nil {
			s.log.Warn("admin push failed", zap.String("type", n.Type), zap.Error(err))
		}
	}
	if s.mail != nil && s.adminEmail != "" {
		if err := s.mail.Send(s.adminEmail, n.Title, n.Description); err != nil {
			s.log.Warn("admin email failed", zap.String("type", n.Type), zap.Error(err))
		}
	}
}

// fanOutUser pushes to the recipient's open connections and device. u is
// looked up when not supplied.
func (s *NotificationService) fanOutUser(ctx context.Context, n *models.Notification, u *models.User) {
	if s.hub != nil {
		s.hub.BroadcastToUser(n.UserID, realtimePayload(n))
	}
	if s.fcm == nil {
		return
	}
	if u == nil {
		found, err := s.users.GetByID(ctx, n.UserID)
		if err != nil {
			return
		}
		u = found
	}
	if u.FCMToken == "" {
		return
	}
	if err := s.fcm.SendToUser(ctx, u.FCMToken, n.Type, n.Title, n.Description, n.Extra); err != nil {
		s.log.Warn("user push failed", zap.String("user_id", n.UserID), zap.Error(err))
	}
}

func realtimePayload(n *models.Notification) map[string]interface{} {
	return map[string]interface{}{"type": "notification", "notification": n}
}
