package notify

import (
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one notification the policy decided to send.
type Event struct {
	Recipient primitive.ObjectID
	Type      models.NotificationType
}

// OnTaskCreated notifies the assignee of a freshly created task.
func OnTaskCreated(task *models.Task, actor primitive.ObjectID) []Event {
	if task.Assignee.IsZero() || task.Assignee == actor {
		return nil
	}
	return []Event{{Recipient: task.Assignee, Type: models.NotificationTaskAssigned}}
}

// OnTaskUpdated compares the task before and after a write made by actor.
// A reassignment goes to the new assignee, a transition into completed goes
// to the creator, and any other change goes to the current assignee.
func OnTaskUpdated(before, after *models.Task, actor primitive.ObjectID) []Event {
	var events []Event

	reassigned := before.Assignee != after.Assignee
	completed := before.Status != models.StatusCompleted && after.Status == models.StatusCompleted

	if reassigned && after.Assignee != actor {
		events = append(events, Event{Recipient: after.Assignee, Type: models.NotificationTaskReassigned})
	}
	if completed && after.Creator != actor {
		events = append(events, Event{Recipient: after.Creator, Type: models.NotificationTaskCompleted})
	}
	if !reassigned && !completed && fieldsChanged(before, after) && after.Assignee != actor {
		events = append(events, Event{Recipient: after.Assignee, Type: models.NotificationTaskUpdated})
	}
	return events
}

func fieldsChanged(before, after *models.Task) bool {
	return before.Title != after.Title ||
		before.Description != after.Description ||
		before.Status != after.Status ||
		before.Priority != after.Priority ||
		!sameTime(before.DueDate, after.DueDate) ||
		!sameID(before.Project, after.Project)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CommentRecipients returns the assignee, the creator and every earlier
// commenter of task, each once, leaving out the commenter. task must be the
// state before the new comment was added.
func CommentRecipients(task *models.Task, commenter primitive.ObjectID) []primitive.ObjectID {
	candidates := append([]primitive.ObjectID{task.Assignee, task.Creator}, task.Commenters()...)

	seen := map[primitive.ObjectID]struct{}{commenter: {}}
	var out []primitive.ObjectID
	for _, id := range candidates {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
