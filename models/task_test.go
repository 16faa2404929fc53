package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetStatusKeepsCompletedAtInSync(t *testing.T) {
	task := Task{Status: StatusTodo}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	steps := []struct {
		status  TaskStatus
		changed bool
	}{
		{StatusInProgress, true},
		{StatusCompleted, true},
		{StatusCompleted, false},
		{StatusTodo, true},
	}
	for i, step := range steps {
		changed := task.SetStatus(step.status, now.Add(time.Duration(i)*time.Minute))
		if changed != step.changed {
			t.Fatalf("step %d: expected changed=%v got %v", i, step.changed, changed)
		}
		if (task.CompletedAt != nil) != (task.Status == StatusCompleted) {
			t.Fatalf("step %d: completedAt=%v with status %s", i, task.CompletedAt, task.Status)
		}
	}
}

func TestSetStatusSecondCompletionKeepsTimestamp(t *testing.T) {
	task := Task{Status: StatusInProgress}
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	task.SetStatus(StatusCompleted, first)
	task.SetStatus(StatusCompleted, first.Add(time.Hour))
	if !task.CompletedAt.Equal(first) {
		t.Fatalf("expected completedAt %v got %v", first, task.CompletedAt)
	}
}

func TestCommentersDeduplicated(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	task := Task{Comments: []Comment{{Author: a}, {Author: b}, {Author: a}}}
	got := task.Commenters()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected commenters %v", got)
	}
}

func TestNotificationMarkReadOnce(t *testing.T) {
	n := Notification{}
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !n.MarkRead(first) {
		t.Fatalf("expected first mark to change state")
	}
	if n.MarkRead(first.Add(time.Hour)) {
		t.Fatalf("expected second mark to be a no-op")
	}
	if !n.IsRead || n.ReadAt == nil || !n.ReadAt.Equal(first) {
		t.Fatalf("unexpected read state %v %v", n.IsRead, n.ReadAt)
	}
}

func TestActionFamilies(t *testing.T) {
	for _, a := range AllActions {
		if a.Family() == FamilyOther {
			t.Fatalf("action %s has no family", a)
		}
	}
	if Action("bogus").Valid() {
		t.Fatalf("expected unknown action to be invalid")
	}
}
