package repoNotification

import (
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// row is the Cassandra shape of a notification. Object ids are stored as hex
// text and optional references as empty strings.
type row struct {
	recipient string
	createdAt time.Time
	id        string
	sender    string
	typ       string
	title     string
	message   string
	task      string
	project   string
	isRead    bool
	readAt    time.Time
}

func toRow(n *models.Notification) row {
	r := row{
		recipient: n.Recipient.Hex(),
		createdAt: n.CreatedAt,
		id:        n.ID.Hex(),
		sender:    n.Sender.Hex(),
		typ:       string(n.Type),
		title:     n.Title,
		message:   n.Message,
		isRead:    n.IsRead,
	}
	if n.Task != nil {
		r.task = n.Task.Hex()
	}
	if n.Project != nil {
		r.project = n.Project.Hex()
	}
	if n.ReadAt != nil {
		r.readAt = *n.ReadAt
	}
	return r
}

func optionalID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r row) toModel() (models.Notification, error) {
	var n models.Notification
	var err error
	if n.ID, err = primitive.ObjectIDFromHex(r.id); err != nil {
		return n, err
	}
	if n.Recipient, err = primitive.ObjectIDFromHex(r.recipient); err != nil {
		return n, err
	}
	if n.Sender, err = primitive.ObjectIDFromHex(r.sender); err != nil {
		return n, err
	}
	if n.Task, err = optionalID(r.task); err != nil {
		return n, err
	}
	if n.Project, err = optionalID(r.project); err != nil {
		return n, err
	}
	n.Type = models.NotificationType(r.typ)
	n.Title = r.title
	n.Message = r.message
	n.IsRead = r.isRead
	n.CreatedAt = r.createdAt.UTC()
	if r.isRead && !r.readAt.IsZero() {
		at := r.readAt.UTC()
		n.ReadAt = &at
	}
	return n, nil
}
