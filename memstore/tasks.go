package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cloneTask(t models.Task) models.Task {
	t.Comments = append([]models.Comment{}, t.Comments...)
	return t
}

func (m *Memory) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	m.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (m *Memory) GetTask(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (m *Memory) UpdateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := cloneTask(*t)
	updated.Comments = existing.Comments
	updated.Creator = existing.Creator
	updated.CreatedAt = existing.CreatedAt
	m.tasks[t.ID] = updated
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) ListTasks(_ context.Context, f store.TaskFilter) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Task{}
	for _, t := range m.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Project != nil && (t.Project == nil || *t.Project != *f.Project) {
			continue
		}
		if f.Assignee != nil && t.Assignee != *f.Assignee {
			continue
		}
		if f.InvolvedUser != nil && !t.InvolvedWith(*f.InvolvedUser) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountTasksByProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, t := range m.tasks {
		if t.Project != nil && *t.Project == projectID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) AddComment(_ context.Context, taskID primitive.ObjectID, c models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	t = cloneTask(t)
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = c.CreatedAt
	m.tasks[taskID] = t
	return nil
}

func (m *Memory) UpdateComment(_ context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	t = cloneTask(t)
	c, ok := t.Comment(commentID)
	if !ok {
		return store.ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = &at
	m.tasks[taskID] = t
	return nil
}

func (m *Memory) DeleteComment(_ context.Context, taskID, commentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	kept := make([]models.Comment, 0, len(t.Comments))
	for _, c := range t.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(t.Comments) {
		return store.ErrNotFound
	}
	t.Comments = kept
	m.tasks[taskID] = t
	return nil
}
