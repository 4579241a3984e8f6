package service

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
	log    *zap.Logger
}

// NewFCMService returns nil if Firebase is not configured; a nil *FCMService
// is safe to call.
func NewFCMService(ctx context.Context, app *firebase.App, log *zap.Logger) *FCMService {
	if app == nil {
		return nil
	}
	log = log.Named("fcm")
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warn("messaging client unavailable", zap.Error(err))
		return nil
	}
	return &FCMService{client: client, log: log}
}

func buildMessage(title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

// Send sends a push notification to the given FCM token.
func (s *FCMService) Send(ctx context.Context, token string, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := buildMessage(title, body, data)
	msg.Token = token
	if _, err := s.client.Send(ctx, msg); err != nil {
		s.log.Warn("send failed", zap.Error(err))
		return err
	}
	return nil
}

// SendToUser sends a push to a user by their FCM token. Token is fetched by the caller.
func (s *FCMService) SendToUser(ctx context.Context, fcmToken string, notifType, title, body string, data map[string]interface{}) error {
	if s == nil || fcmToken == "" {
		return nil
	}
	return s.Send(ctx, fcmToken, title, body, stringData(notifType, data))
}

// SendToTopic pushes to every device subscribed to topic.
func (s *FCMService) SendToTopic(ctx context.Context, topic, notifType, title, body string, data map[string]interface{}) error {
	if s == nil || topic == "" {
		return nil
	}
	msg := buildMessage(title, body, stringData(notifType, data))
	msg.Topic = topic
	if _, err := s.client.Send(ctx, msg); err != nil {
		s.log.Warn("topic send failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	return nil
}

// stringData flattens data for FCM, which only accepts string values.
func stringData(notifType string, data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case int:
			out[k] = fmt.Sprintf("%d", val)
		case float64:
			out[k] = fmt.Sprintf("%.0f", val)
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	out["type"] = notifType
	return out
}
