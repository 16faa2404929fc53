package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Assignee    primitive.ObjectID  `bson:"assignee" json:"assignee"`
	Project     *primitive.ObjectID `bson:"project,omitempty" json:"project,omitempty"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	DueDate     *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Creator     primitive.ObjectID  `bson:"creator" json:"creator"`
	CompletedAt *time.Time          `bson:"completedAt" json:"completedAt"`
	Comments    []Comment           `bson:"comments" json:"comments"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SetStatus moves the task to status and keeps CompletedAt set exactly while
// the task is completed. It reports whether the status changed.
func (t *Task) SetStatus(status TaskStatus, now time.Time) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	if status == StatusCompleted {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return true
}

// Commenters returns the distinct comment authors in order of first comment.
func (t *Task) Commenters() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(t.Comments))
	var out []primitive.ObjectID
	for _, c := range t.Comments {
		if _, ok := seen[c.Author]; ok {
			continue
		}
		seen[c.Author] = struct{}{}
		out = append(out, c.Author)
	}
	return out
}

func (t *Task) Comment(id primitive.ObjectID) (*Comment, bool) {
	for i := range t.Comments {
		if t.Comments[i].ID == id {
			return &t.Comments[i], true
		}
	}
	return nil, false
}

// InvolvedWith reports whether userID is the task's assignee or creator.
func (t *Task) InvolvedWith(userID primitive.ObjectID) bool {
	return t.Assignee == userID || t.Creator == userID
}
