// Package notify decides who hears about task, comment and project changes
// and writes the resulting notifications. Every write is best effort: a
// failure is logged and reported in the Result, never returned as an error.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Writer interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Broadcaster pushes a stored notification to live listeners.
type Broadcaster interface {
	BroadcastNotification(ctx context.Context, n *models.Notification)
}

// Result is the outcome of one notification attempt. Err is only ever
// logged; callers must not fail their own operation on it.
type Result struct {
	Notification *models.Notification
	Suppressed   bool
	Err          error
}

func (r Result) Created() bool {
	return r.Notification != nil
}

type Notifier struct {
	store       Writer
	broadcaster Broadcaster
	logger      *log.Logger
	now         func() time.Time
}

type Option func(*Notifier)

func WithBroadcaster(b Broadcaster) Option {
	return func(n *Notifier) { n.broadcaster = b }
}

func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

func NewNotifier(store Writer, logger *log.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyTaskEvent tells recipient about eventType on task. Unknown event
// types use the generic task template.
func (n *Notifier) NotifyTaskEvent(ctx context.Context, recipient, sender primitive.ObjectID, task *models.Task, eventType models.NotificationType) Result {
	if recipient == sender {
		return Result{Suppressed: true}
	}
	title, message := taskContent(eventType, task.Title)
	taskID := task.ID
	return n.create(ctx, &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      eventType,
		Title:     title,
		Message:   message,
		Task:      &taskID,
		Project:   task.Project,
	})
}

func (n *Notifier) NotifyCommentEvent(ctx context.Context, recipient, sender primitive.ObjectID, task *models.Task, commentText string) Result {
	if recipient == sender {
		return Result{Suppressed: true}
	}
	title, message := commentContent(task.Title, commentText)
	taskID := task.ID
	return n.create(ctx, &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      models.NotificationCommentAdded,
		Title:     title,
		Message:   message,
		Task:      &taskID,
		Project:   task.Project,
	})
}

func (n *Notifier) NotifyProjectAssigned(ctx context.Context, recipient, sender primitive.ObjectID, project *models.Project) Result {
	if recipient == sender {
		return Result{Suppressed: true}
	}
	title, message := projectContent(project.Title)
	projectID := project.ID
	return n.create(ctx, &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      models.NotificationProjectAssigned,
		Title:     title,
		Message:   message,
		Project:   &projectID,
	})
}

// Dispatch sends every policy event for task on behalf of sender.
func (n *Notifier) Dispatch(ctx context.Context, sender primitive.ObjectID, task *models.Task, events []Event) []Result {
	results := make([]Result, 0, len(events))
	for _, ev := range events {
		results = append(results, n.NotifyTaskEvent(ctx, ev.Recipient, sender, task, ev.Type))
	}
	return results
}

// NotifyCommenters fans a new comment out to CommentRecipients of task.
func (n *Notifier) NotifyCommenters(ctx context.Context, sender primitive.ObjectID, task *models.Task, commentText string) []Result {
	recipients := CommentRecipients(task, sender)
	results := make([]Result, 0, len(recipients))
	for _, recipient := range recipients {
		results = append(results, n.NotifyCommentEvent(ctx, recipient, sender, task, commentText))
	}
	return results
}

func (n *Notifier) create(ctx context.Context, notification *models.Notification) Result {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = n.now()

	if err := n.store.CreateNotification(ctx, notification); err != nil {
		n.logger.Printf("Failed to create %s notification for %s: %v", notification.Type, notification.Recipient.Hex(), err)
		return Result{Err: err}
	}
	if n.broadcaster != nil {
		n.broadcaster.BroadcastNotification(ctx, notification)
	}
	return Result{Notification: notification}
}
