package service

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FCMService sends web push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
	log    logrus.FieldLogger
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(ctx context.Context, credentialsFile string, log logrus.FieldLogger) *FCMService {
	if credentialsFile == "" {
		return nil
	}
	log = log.WithField("component", "fcm")
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		log.WithError(err).Error("init firebase app")
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.WithError(err).Error("init messaging client")
		return nil
	}
	return &FCMService{client: client, log: log}
}

// Send pushes a notification to one registration token. link is opened on click.
func (s *FCMService) Send(ctx context.Context, token, title, body, link string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": "high"},
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/favicon.png",
			},
		},
	}
	if link != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: link}
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		s.log.WithError(err).Warn("send failed")
		return err
	}
	return nil
}

// stringData flattens a payload for FCM, which only accepts string values.
func stringData(notifType string, data map[string]interface{}) map[string]string {
	out := map[string]string{"type": notifType}
	for k, v := range data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case uint, int, int64:
			out[k] = fmt.Sprintf("%d", val)
		case fmt.Stringer:
			out[k] = val.String()
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	return out
}
