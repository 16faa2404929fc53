package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies which template and routing rule produced a notification.
type NotificationType string

const (
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationTaskUpdated     NotificationType = "task_updated"
	NotificationTaskCompleted   NotificationType = "task_completed"
	NotificationTaskReassigned  NotificationType = "task_reassigned"
	NotificationCommentAdded    NotificationType = "comment_added"
	NotificationProjectAssigned NotificationType = "project_assigned"
)

// AllNotificationTypes is the closed set accepted by the store.
var AllNotificationTypes = []NotificationType{
	NotificationTaskAssigned,
	NotificationTaskUpdated,
	NotificationTaskCompleted,
	NotificationTaskReassigned,
	NotificationCommentAdded,
	NotificationProjectAssigned,
}

func (t NotificationType) Known() bool {
	for _, k := range AllNotificationTypes {
		if t == k {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Recipient primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Sender    primitive.ObjectID  `bson:"sender" json:"sender"`
	Type      NotificationType    `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Task      *primitive.ObjectID `bson:"task,omitempty" json:"task,omitempty"`
	Project   *primitive.ObjectID `bson:"project,omitempty" json:"project,omitempty"`
	IsRead    bool                `bson:"isRead" json:"isRead"`
	ReadAt    *time.Time          `bson:"readAt" json:"readAt"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// MarkRead flags the notification as read. A notification that is already
// read keeps its original ReadAt and false is returned.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead {
		return false
	}
	at := now
	n.IsRead = true
	n.ReadAt = &at
	return true
}
