package repoNotification

import (
	"testing"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRowConversion(t *testing.T) {
	task := primitive.NewObjectID()
	readAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: primitive.NewObjectID(),
		Sender:    primitive.NewObjectID(),
		Type:      models.NotificationTaskCompleted,
		Title:     "Task Completed",
		Message:   `Task "Ship" has been marked as completed`,
		Task:      &task,
		IsRead:    true,
		ReadAt:    &readAt,
		CreatedAt: readAt.Add(-time.Hour),
	}

	got, err := toRow(&n).toModel()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.ID != n.ID || got.Recipient != n.Recipient || got.Sender != n.Sender {
		t.Fatalf("ids not preserved: %+v", got)
	}
	if got.Task == nil || *got.Task != task || got.Project != nil {
		t.Fatalf("references not preserved: %+v", got)
	}
	if got.ReadAt == nil || !got.ReadAt.Equal(readAt) || !got.CreatedAt.Equal(n.CreatedAt) {
		t.Fatalf("timestamps not preserved: %+v", got)
	}
}

func TestUnreadRowHasNoReadAt(t *testing.T) {
	n := models.Notification{ID: primitive.NewObjectID(), Recipient: primitive.NewObjectID(), Sender: primitive.NewObjectID()}
	got, err := toRow(&n).toModel()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.IsRead || got.ReadAt != nil {
		t.Fatalf("expected unread without readAt, got %+v", got)
	}
}

func TestMalformedRowRejected(t *testing.T) {
	if _, err := (row{id: "nope"}).toModel(); err == nil {
		t.Fatalf("expected malformed id to fail")
	}
}

func TestWindow(t *testing.T) {
	items := make([]models.Notification, 5)
	if got := window(items, 1, 2); len(got) != 2 {
		t.Fatalf("expected 2 got %d", len(got))
	}
	if got := window(items, 4, 10); len(got) != 1 {
		t.Fatalf("expected 1 got %d", len(got))
	}
	if got := window(items, 9, 10); len(got) != 0 {
		t.Fatalf("expected 0 got %d", len(got))
	}
	if got := window(items, 0, 0); len(got) != 5 {
		t.Fatalf("expected unlimited page, got %d", len(got))
	}
}
