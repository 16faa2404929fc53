package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

// notifications

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNotifications != nil {
		return m.FailNotifications
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, f store.NotificationFilter) ([]models.Notification, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []models.Notification{}
	for _, n := range m.notifications {
		if n.Recipient != f.Recipient || (f.UnreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, f.Skip, f.Limit), int64(len(matched)), nil
}

func (m *Memory) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, n := range m.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *Memory) MarkRead(_ context.Context, id, recipient primitive.ObjectID, at time.Time) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.Recipient != recipient {
		return nil, store.ErrNotFound
	}
	if n.MarkRead(at) {
		m.notifications[id] = n
	}
	return &n, nil
}

func (m *Memory) MarkAllRead(_ context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.notifications {
		if n.Recipient == recipient && n.MarkRead(at) {
			m.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (m *Memory) DeleteNotification(_ context.Context, id, recipient primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.Recipient != recipient {
		return store.ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *Memory) ClearNotifications(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.notifications {
		if n.Recipient == recipient {
			delete(m.notifications, id)
			count++
		}
	}
	return count, nil
}

// activity

func (m *Memory) CreateActivity(_ context.Context, a *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailActivity != nil {
		return m.FailActivity
	}
	if !a.Action.Valid() {
		return fmt.Errorf("document failed validation: action %q", a.Action)
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.activity[a.ID] = *a
	return nil
}

func inRange(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}

func (m *Memory) ListActivity(_ context.Context, f store.ActivityFilter) ([]models.ActivityLog, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []models.ActivityLog{}
	for _, a := range m.activity {
		if f.Actor != nil && a.Actor != *f.Actor {
			continue
		}
		if f.Action != "" && a.Action != f.Action {
			continue
		}
		if f.EntityType != "" && a.EntityType != f.EntityType {
			continue
		}
		if !inRange(a.CreatedAt, f.From, f.To) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, f.Skip, f.Limit), int64(len(matched)), nil
}

func (m *Memory) ActivityStats(_ context.Context, groupBy store.GroupBy, from, to *time.Time) ([]store.ActivityStat, error) {
	if !groupBy.Valid() {
		return nil, fmt.Errorf("unsupported group: %q", groupBy)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := map[string]*store.ActivityStat{}
	for _, a := range m.activity {
		if !inRange(a.CreatedAt, from, to) {
			continue
		}
		var key string
		switch groupBy {
		case store.GroupByAction:
			key = string(a.Action)
		case store.GroupByEntityType:
			key = string(a.EntityType)
		case store.GroupByActor:
			key = a.Actor.Hex()
		}
		g, ok := groups[key]
		if !ok {
			g = &store.ActivityStat{Key: key}
			groups[key] = g
		}
		g.Count++
		if a.CreatedAt.After(g.LastActivity) {
			g.LastActivity = a.CreatedAt
		}
	}

	out := make([]store.ActivityStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (m *Memory) DeleteActivityBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, a := range m.activity {
		if a.CreatedAt.Before(cutoff) {
			delete(m.activity, id)
			count++
		}
	}
	return count, nil
}
