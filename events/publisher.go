// Package events publishes domain events and live notifications over NATS.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"github.com/nats-io/nats.go"
	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const subjectPrefix = "taskboard"

type EventType string

const (
	TaskCreated         EventType = "task.created"
	TaskUpdated         EventType = "task.updated"
	TaskDeleted         EventType = "task.deleted"
	TaskCommented       EventType = "task.commented"
	ProjectCreated      EventType = "project.created"
	ProjectUpdated      EventType = "project.updated"
	ProjectDeleted      EventType = "project.deleted"
	NotificationCreated EventType = "notification.created"
)

// Event is the envelope written to every subject.
type Event struct {
	ID       string             `json:"id"`
	Type     EventType          `json:"type"`
	Time     time.Time          `json:"time"`
	Actor    primitive.ObjectID `json:"actor"`
	EntityID primitive.ObjectID `json:"entityId"`
	Data     any                `json:"data,omitempty"`
}

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

type Publisher struct {
	conn   Conn
	logger *log.Logger
}

func Connect(url string, logger *log.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("team-tracker"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("Disconnected from NATS: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Printf("Reconnected to NATS at %s", nc.ConnectedUrl())
		}),
	)
}

// NewPublisher returns a publisher on conn. A nil conn yields a publisher that
// drops everything, which is how the service runs without NATS_URL.
func NewPublisher(conn Conn, logger *log.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

func Subject(t EventType) string {
	return subjectPrefix + "." + string(t)
}

func NotificationSubject(recipient primitive.ObjectID) string {
	return subjectPrefix + ".notifications." + recipient.Hex()
}

// Publish sends an event on its type's subject. Failures are logged only.
func (p *Publisher) Publish(t EventType, actor, entityID primitive.ObjectID, data any) {
	p.send(Subject(t), t, actor, entityID, data)
}

// BroadcastNotification pushes n to the recipient's personal subject.
func (p *Publisher) BroadcastNotification(_ context.Context, n *models.Notification) {
	p.send(NotificationSubject(n.Recipient), NotificationCreated, n.Sender, n.ID, n)
}

func (p *Publisher) send(subject string, t EventType, actor, entityID primitive.ObjectID, data any) {
	if p == nil || p.conn == nil {
		return
	}
	id, err := uuid.NewV4()
	if err != nil {
		p.logger.Printf("Failed to generate event id: %v", err)
		return
	}
	payload, err := json.Marshal(Event{
		ID:       id.String(),
		Type:     t,
		Time:     time.Now().UTC(),
		Actor:    actor,
		EntityID: entityID,
		Data:     data,
	})
	if err != nil {
		p.logger.Printf("Failed to encode %s event: %v", t, err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Printf("Failed to publish %s on %s: %v", t, subject, err)
	}
}
