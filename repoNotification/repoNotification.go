// Package repoNotification keeps notifications in Cassandra, partitioned by
// recipient and clustered newest first.
package repoNotification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	keyspace = "notifications"
	table    = "notifications_by_recipient"
	columns  = "recipient, created_at, id, sender, type, title, message, task, project, is_read, read_at"
)

// NotificationRepo implements store.NotificationStore on a gocql session.
type NotificationRepo struct {
	session *gocql.Session
	logger  *log.Logger
}

var _ store.NotificationStore = (*NotificationRepo)(nil)

func New(host string, logger *log.Logger) (*NotificationRepo, error) {
	if host == "" {
		return nil, fmt.Errorf("CASS_DB environment variable is not set")
	}

	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	cluster.Consistency = gocql.One

	var session *gocql.Session
	var err error
	for i := 0; i < 5; i++ {
		logger.Printf("Attempting to connect to Cassandra, try %d...", i+1)
		session, err = cluster.CreateSession()
		if err == nil {
			break
		}
		logger.Printf("Attempt %d: Failed to connect to Cassandra: %v", i+1, err)
		time.Sleep(10 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(`
		CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("create keyspace: %w", err)
	}

	cluster.Keyspace = keyspace
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to %s keyspace: %w", keyspace, err)
	}
	logger.Printf("Connected to Cassandra keyspace %q", keyspace)

	return &NotificationRepo{session: session, logger: logger}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
}

func (nr *NotificationRepo) CreateTables() error {
	return nr.session.Query(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			recipient text, created_at timestamp, id text,
			sender text, type text, title text, message text,
			task text, project text, is_read boolean, read_at timestamp,
			PRIMARY KEY (recipient, created_at, id))
		WITH CLUSTERING ORDER BY (created_at DESC, id DESC)`, table)).Exec()
}

func (nr *NotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	// Cassandra timestamps carry millisecond precision.
	n.CreatedAt = n.CreatedAt.Truncate(time.Millisecond)
	r := toRow(n)
	err := nr.session.Query(
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, columns),
		r.recipient, r.createdAt, r.id, r.sender, r.typ, r.title, r.message, r.task, r.project, r.isRead, r.readAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// partition loads every notification of a recipient, newest first.
func (nr *NotificationRepo) partition(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	scanner := nr.session.Query(
		fmt.Sprintf(`SELECT %s FROM %s WHERE recipient = ?`, columns, table), recipient.Hex(),
	).WithContext(ctx).Iter().Scanner()

	var out []models.Notification
	for scanner.Next() {
		var r row
		if err := scanner.Scan(&r.recipient, &r.createdAt, &r.id, &r.sender, &r.typ, &r.title,
			&r.message, &r.task, &r.project, &r.isRead, &r.readAt); err != nil {
			return nil, err
		}
		n, err := r.toModel()
		if err != nil {
			nr.logger.Printf("Skipping malformed notification row %q: %v", r.id, err)
			continue
		}
		out = append(out, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (nr *NotificationRepo) ListNotifications(ctx context.Context, f store.NotificationFilter) ([]models.Notification, int64, error) {
	all, err := nr.partition(ctx, f.Recipient)
	if err != nil {
		return nil, 0, err
	}
	matched := all[:0]
	for _, n := range all {
		if f.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	return window(matched, f.Skip, f.Limit), int64(len(matched)), nil
}

func (nr *NotificationRepo) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	all, err := nr.partition(ctx, recipient)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, n := range all {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (nr *NotificationRepo) find(ctx context.Context, id, recipient primitive.ObjectID) (*models.Notification, error) {
	all, err := nr.partition(ctx, recipient)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (nr *NotificationRepo) setRead(ctx context.Context, n *models.Notification) error {
	return nr.session.Query(
		fmt.Sprintf(`UPDATE %s SET is_read = ?, read_at = ? WHERE recipient = ? AND created_at = ? AND id = ?`, table),
		true, *n.ReadAt, n.Recipient.Hex(), n.CreatedAt, n.ID.Hex(),
	).WithContext(ctx).Exec()
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error) {
	n, err := nr.find(ctx, id, recipient)
	if err != nil {
		return nil, err
	}
	if !n.MarkRead(at.Truncate(time.Millisecond)) {
		return n, nil
	}
	if err := nr.setRead(ctx, n); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (nr *NotificationRepo) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	all, err := nr.partition(ctx, recipient)
	if err != nil {
		return 0, err
	}
	var updated int64
	for i := range all {
		if !all[i].MarkRead(at.Truncate(time.Millisecond)) {
			continue
		}
		if err := nr.setRead(ctx, &all[i]); err != nil {
			return updated, fmt.Errorf("mark notification read: %w", err)
		}
		updated++
	}
	return updated, nil
}

func (nr *NotificationRepo) delete(ctx context.Context, n *models.Notification) error {
	return nr.session.Query(
		fmt.Sprintf(`DELETE FROM %s WHERE recipient = ? AND created_at = ? AND id = ?`, table),
		n.Recipient.Hex(), n.CreatedAt, n.ID.Hex(),
	).WithContext(ctx).Exec()
}

func (nr *NotificationRepo) DeleteNotification(ctx context.Context, id, recipient primitive.ObjectID) error {
	n, err := nr.find(ctx, id, recipient)
	if err != nil {
		return err
	}
	return nr.delete(ctx, n)
}

func (nr *NotificationRepo) ClearNotifications(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	all, err := nr.partition(ctx, recipient)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}
	err = nr.session.Query(fmt.Sprintf(`DELETE FROM %s WHERE recipient = ?`, table), recipient.Hex()).
		WithContext(ctx).Exec()
	if err != nil {
		return 0, fmt.Errorf("clear notifications: %w", err)
	}
	return int64(len(all)), nil
}

func window(items []models.Notification, skip, limit int64) []models.Notification {
	if skip >= int64(len(items)) {
		return []models.Notification{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}
