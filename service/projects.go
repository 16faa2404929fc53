package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectInput struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Owner       *primitive.ObjectID `json:"owner"`
}

func (s *Service) ListProjects(ctx context.Context, _ Caller) ([]models.Project, error) {
	return s.store.Projects.ListProjects(ctx)
}

func (s *Service) GetProject(ctx context.Context, _ Caller, id primitive.ObjectID) (*models.Project, error) {
	return s.store.Projects.GetProject(ctx, id)
}

// activeUser loads a user that may own or be assigned work.
func (s *Service) activeUser(ctx context.Context, field string, id primitive.ObjectID) (*models.User, error) {
	u, err := s.store.Users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid(field, "user does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, invalid(field, "user is deactivated")
	}
	return u, nil
}

func (s *Service) CreateProject(ctx context.Context, c Caller, in ProjectInput) (*models.Project, error) {
	if !c.Role.CanManage() {
		return nil, ErrForbidden
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, invalid("title", "is required")
	}
	owner := c.ID
	if in.Owner != nil && !in.Owner.IsZero() {
		owner = *in.Owner
	}
	ownerUser, err := s.activeUser(ctx, "owner", owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &models.Project{
		ID:        primitive.NewObjectID(),
		Title:     strings.TrimSpace(*in.Title),
		Owner:     owner,
		CreatedBy: c.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if err := s.store.Projects.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.notifier.NotifyProjectAssigned(ctx, owner, c.ID, project)
	s.record(ctx, c, models.ActionProjectCreated, activity.ProjectTarget(project), activity.Metadata{
		activity.MetaOwnerName: ownerUser.Name,
	})
	s.publisher.Publish(events.ProjectCreated, c.ID, project.ID, project)
	return project, nil
}

// UpdateProject edits a project. Handing it to a new owner notifies them and
// is audited as an ownership change rather than a plain update.
func (s *Service) UpdateProject(ctx context.Context, c Caller, id primitive.ObjectID, in ProjectInput) (*models.Project, error) {
	if !c.Role.CanManage() {
		return nil, ErrForbidden
	}
	project, err := s.store.Projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title", "must not be empty")
		}
		if title != project.Title {
			project.Title = title
			changes = append(changes, "title")
		}
	}
	if in.Description != nil && *in.Description != project.Description {
		project.Description = *in.Description
		changes = append(changes, "description")
	}
	var newOwner *models.User
	if in.Owner != nil && !in.Owner.IsZero() && *in.Owner != project.Owner {
		if newOwner, err = s.activeUser(ctx, "owner", *in.Owner); err != nil {
			return nil, err
		}
		project.Owner = newOwner.ID
		changes = append(changes, "owner")
	}
	if len(changes) == 0 {
		return project, nil
	}

	project.UpdatedAt = s.now()
	if err := s.store.Projects.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	meta := activity.Metadata{activity.MetaChanges: changes}
	if newOwner != nil {
		s.notifier.NotifyProjectAssigned(ctx, newOwner.ID, c.ID, project)
		meta[activity.MetaOwnerName] = newOwner.Name
		s.record(ctx, c, models.ActionProjectOwnerChanged, activity.ProjectTarget(project), meta)
	} else {
		s.record(ctx, c, models.ActionProjectUpdated, activity.ProjectTarget(project), meta)
	}
	s.publisher.Publish(events.ProjectUpdated, c.ID, project.ID, project)
	return project, nil
}

// DeleteProject refuses while any task still references the project.
func (s *Service) DeleteProject(ctx context.Context, c Caller, id primitive.ObjectID) error {
	if !c.Role.CanManage() {
		return ErrForbidden
	}
	project, err := s.store.Projects.GetProject(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.store.Tasks.CountTasksByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("count project tasks: %w", err)
	}
	if count > 0 {
		return ErrProjectHasTasks
	}
	if err := s.store.Projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.record(ctx, c, models.ActionProjectDeleted, activity.ProjectTarget(project), nil)
	s.publisher.Publish(events.ProjectDeleted, c.ID, project.ID, nil)
	return nil
}
