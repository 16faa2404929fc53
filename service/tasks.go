package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/notify"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Assignee    *primitive.ObjectID  `json:"assignee"`
	Project     *primitive.ObjectID  `json:"project"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"dueDate"`
}

// canView matches the member filter of ListTasks: managers see everything,
// members only tasks they are assigned to or created.
func canView(c Caller, t *models.Task) bool {
	return c.Role.CanManage() || t.InvolvedWith(c.ID)
}

func canEdit(c Caller, t *models.Task) bool {
	return c.Role.CanManage() || t.InvolvedWith(c.ID)
}

func canDelete(c Caller, t *models.Task) bool {
	return c.Role.CanManage() || t.Creator == c.ID
}

func (s *Service) ListTasks(ctx context.Context, c Caller, f store.TaskFilter) ([]models.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "must be todo, in-progress or completed")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, invalid("priority", "must be low, medium or high")
	}
	f.InvolvedUser = nil
	if !c.Role.CanManage() {
		id := c.ID
		f.InvolvedUser = &id
	}
	return s.store.Tasks.ListTasks(ctx, f)
}

func (s *Service) GetTask(ctx context.Context, c Caller, id primitive.ObjectID) (*models.Task, error) {
	task, err := s.store.Tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(c, task) {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *Service) checkProject(ctx context.Context, id *primitive.ObjectID) error {
	if id == nil || id.IsZero() {
		return nil
	}
	_, err := s.store.Projects.GetProject(ctx, *id)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("project", "project does not exist")
	}
	return err
}

func (s *Service) CreateTask(ctx context.Context, c Caller, in TaskInput) (*models.Task, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, invalid("title", "is required")
	}
	if in.Assignee == nil || in.Assignee.IsZero() {
		return nil, invalid("assignee", "is required")
	}
	assignee, err := s.activeUser(ctx, "assignee", *in.Assignee)
	if err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, in.Project); err != nil {
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		ID:        primitive.NewObjectID(),
		Title:     strings.TrimSpace(*in.Title),
		Assignee:  assignee.ID,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		Creator:   c.ID,
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
		DueDate:   in.DueDate,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Project != nil && !in.Project.IsZero() {
		project := *in.Project
		task.Project = &project
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, invalid("priority", "must be low, medium or high")
		}
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("status", "must be todo, in-progress or completed")
		}
		task.SetStatus(*in.Status, now)
	}

	if err := s.store.Tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.notifier.Dispatch(ctx, c.ID, task, notify.OnTaskCreated(task, c.ID))
	s.record(ctx, c, models.ActionTaskCreated, activity.TaskTarget(task), activity.Metadata{
		activity.MetaPriority:     string(task.Priority),
		activity.MetaAssigneeName: assignee.Name,
	})
	s.publisher.Publish(events.TaskCreated, c.ID, task.ID, task)
	return task, nil
}

// UpdateTask applies a partial update. Only changed fields count; a request
// that changes nothing writes nothing.
func (s *Service) UpdateTask(ctx context.Context, c Caller, id primitive.ObjectID, in TaskInput) (*models.Task, error) {
	before, err := s.store.Tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(c, before) {
		return nil, ErrForbidden
	}

	now := s.now()
	after := *before
	var changes []string
	var assignee *models.User

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title", "must not be empty")
		}
		if title != after.Title {
			after.Title = title
			changes = append(changes, "title")
		}
	}
	if in.Description != nil && *in.Description != after.Description {
		after.Description = *in.Description
		changes = append(changes, "description")
	}
	if in.Assignee != nil && !in.Assignee.IsZero() && *in.Assignee != after.Assignee {
		if assignee, err = s.activeUser(ctx, "assignee", *in.Assignee); err != nil {
			return nil, err
		}
		after.Assignee = assignee.ID
		changes = append(changes, "assignee")
	}
	if in.Project != nil && !sameProject(after.Project, in.Project) {
		if err := s.checkProject(ctx, in.Project); err != nil {
			return nil, err
		}
		after.Project = nil
		if !in.Project.IsZero() {
			project := *in.Project
			after.Project = &project
		}
		changes = append(changes, "project")
	}
	if in.Priority != nil && *in.Priority != after.Priority {
		if !in.Priority.Valid() {
			return nil, invalid("priority", "must be low, medium or high")
		}
		after.Priority = *in.Priority
		changes = append(changes, "priority")
	}
	if in.DueDate != nil && (after.DueDate == nil || !after.DueDate.Equal(*in.DueDate)) {
		due := *in.DueDate
		after.DueDate = &due
		changes = append(changes, "dueDate")
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("status", "must be todo, in-progress or completed")
		}
		if after.SetStatus(*in.Status, now) {
			changes = append(changes, "status")
		}
	}
	if len(changes) == 0 {
		return before, nil
	}

	after.UpdatedAt = now
	if err := s.store.Tasks.UpdateTask(ctx, &after); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.notifier.Dispatch(ctx, c.ID, &after, notify.OnTaskUpdated(before, &after, c.ID))
	action, meta := taskUpdateAudit(before, &after, changes)
	if assignee != nil {
		meta[activity.MetaAssigneeName] = assignee.Name
	}
	s.record(ctx, c, action, activity.TaskTarget(&after), meta)
	s.publisher.Publish(events.TaskUpdated, c.ID, after.ID, &after)
	return &after, nil
}

// UpdateTaskStatus is the status-only form of UpdateTask.
func (s *Service) UpdateTaskStatus(ctx context.Context, c Caller, id primitive.ObjectID, status models.TaskStatus) (*models.Task, error) {
	if status == "" {
		return nil, invalid("status", "is required")
	}
	return s.UpdateTask(ctx, c, id, TaskInput{Status: &status})
}

// taskUpdateAudit picks the single most specific action for an update.
func taskUpdateAudit(before, after *models.Task, changes []string) (models.Action, activity.Metadata) {
	meta := activity.Metadata{activity.MetaChanges: changes}
	statusChanged := before.Status != after.Status
	if statusChanged {
		meta[activity.MetaOldStatus] = string(before.Status)
		meta[activity.MetaNewStatus] = string(after.Status)
	}
	switch {
	case statusChanged && after.Status == models.StatusCompleted:
		return models.ActionTaskCompleted, meta
	case statusChanged:
		return models.ActionTaskStatusChanged, meta
	case before.Assignee != after.Assignee:
		return models.ActionTaskAssigned, meta
	default:
		return models.ActionTaskUpdated, meta
	}
}

func sameProject(current, requested *primitive.ObjectID) bool {
	if current == nil {
		return requested.IsZero()
	}
	return *current == *requested
}

func (s *Service) DeleteTask(ctx context.Context, c Caller, id primitive.ObjectID) error {
	task, err := s.store.Tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if !canDelete(c, task) {
		return ErrForbidden
	}
	if err := s.store.Tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.record(ctx, c, models.ActionTaskDeleted, activity.TaskTarget(task), nil)
	s.publisher.Publish(events.TaskDeleted, c.ID, task.ID, nil)
	return nil
}
