package service

import (
	"context"
	"encoding/json"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/sirupsen/logrus"
)

// Pusher delivers a push message to a device token.
type Pusher interface {
	Send(ctx context.Context, token, title, body, link string, data map[string]string) error
}

// NotificationService stores inbox items, pushes them live over the hub and to devices via FCM.
type NotificationService struct {
	repo  NotificationStore
	users UserStore
	push  Pusher
	pub   Publisher
	log   logrus.FieldLogger
}

func NewNotificationService(repo NotificationStore, users UserStore, push Pusher, pub Publisher, log logrus.FieldLogger) *NotificationService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &NotificationService{repo: repo, users: users, push: push, pub: pub, log: log.WithField("component", "notification")}
}

func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title, body, link string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Link:   link,
		Data:   dataJSON,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.pub.Publish(userID, domain.EventNotification, n)
	s.sendPush(ctx, userID, notifType, title, body, link, data)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, userID uint, notifType, title, body, link string, data map[string]interface{}) {
	if s.push == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u.FCMToken == "" {
		return
	}
	if err := s.push.Send(ctx, u.FCMToken, title, body, link, stringData(notifType, data)); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Debug("push not delivered")
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// RegisterToken stores the browser's FCM registration token.
func (s *NotificationService) RegisterToken(ctx context.Context, userID uint, token string) error {
	return s.users.UpdateFields(ctx, userID, map[string]interface{}{"fcm_token": token})
}
