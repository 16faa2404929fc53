// Package store declares the persistence contracts shared by the Mongo,
// Cassandra and in-memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, company string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id primitive.ObjectID) error
	ListProjects(ctx context.Context) ([]models.Project, error)
}

type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
	Project  *primitive.ObjectID
	Assignee *primitive.ObjectID
	// InvolvedUser restricts to tasks the user is assigned to or created.
	InvolvedUser *primitive.ObjectID
}

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// UpdateTask replaces the task's mutable fields but never its comments.
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id primitive.ObjectID) error
	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	CountTasksByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)

	AddComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment) error
	UpdateComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error
	DeleteComment(ctx context.Context, taskID, commentID primitive.ObjectID) error
}

type NotificationFilter struct {
	Recipient  primitive.ObjectID
	UnreadOnly bool
	Skip       int64
	Limit      int64
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, f NotificationFilter) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	// MarkRead sets isRead/readAt on an unread notification and returns the
	// stored document. Already-read notifications are returned untouched.
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error)
	DeleteNotification(ctx context.Context, id, recipient primitive.ObjectID) error
	ClearNotifications(ctx context.Context, recipient primitive.ObjectID) (int64, error)
}

type ActivityFilter struct {
	Actor      *primitive.ObjectID
	Action     models.Action
	EntityType models.EntityType
	From       *time.Time
	To         *time.Time
	Skip       int64
	Limit      int64
}

type GroupBy string

const (
	GroupByAction     GroupBy = "action"
	GroupByEntityType GroupBy = "entityType"
	GroupByActor      GroupBy = "actor"
)

func (g GroupBy) Valid() bool {
	return g == GroupByAction || g == GroupByEntityType || g == GroupByActor
}

type ActivityStat struct {
	Key          string    `bson:"_id" json:"key"`
	Count        int64     `bson:"count" json:"count"`
	LastActivity time.Time `bson:"lastActivity" json:"lastActivity"`
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, a *models.ActivityLog) error
	ListActivity(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, int64, error)
	ActivityStats(ctx context.Context, groupBy GroupBy, from, to *time.Time) ([]ActivityStat, error)
	DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles every repository a running service needs.
type Store struct {
	Users         UserStore
	Projects      ProjectStore
	Tasks         TaskStore
	Notifications NotificationStore
	Activity      ActivityStore
	Ping          func(ctx context.Context) error
}
