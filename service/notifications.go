package service

import (
	"context"
	"fmt"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationPage struct {
	Items  []models.Notification `json:"items"`
	Total  int64                 `json:"total"`
	Unread int64                 `json:"unread"`
	Skip   int64                 `json:"skip"`
	Limit  int64                 `json:"limit"`
}

func (s *Service) ListNotifications(ctx context.Context, c Caller, unreadOnly bool, skip, limit int64) (*NotificationPage, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	if skip < 0 {
		skip = 0
	}
	items, total, err := s.store.Notifications.ListNotifications(ctx, store.NotificationFilter{
		Recipient:  c.ID,
		UnreadOnly: unreadOnly,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.Notifications.CountUnread(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &NotificationPage{Items: items, Total: total, Unread: unread, Skip: skip, Limit: limit}, nil
}

// MarkNotificationRead is idempotent: readAt is set on the first call only.
func (s *Service) MarkNotificationRead(ctx context.Context, c Caller, id primitive.ObjectID) (*models.Notification, error) {
	return s.store.Notifications.MarkRead(ctx, id, c.ID, s.now())
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, c Caller) (int64, error) {
	return s.store.Notifications.MarkAllRead(ctx, c.ID, s.now())
}

func (s *Service) DeleteNotification(ctx context.Context, c Caller, id primitive.ObjectID) error {
	return s.store.Notifications.DeleteNotification(ctx, id, c.ID)
}

func (s *Service) ClearNotifications(ctx context.Context, c Caller) (int64, error) {
	return s.store.Notifications.ClearNotifications(ctx, c.ID)
}
