package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentInput struct {
	Text string `json:"text"`
}

// AddComment appends a comment and notifies the assignee, the creator and
// everyone who commented before, except the commenter.
func (s *Service) AddComment(ctx context.Context, c Caller, taskID primitive.ObjectID, in CommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, invalid("text", "is required")
	}
	task, err := s.GetTask(ctx, c, taskID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    c.ID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.store.Tasks.AddComment(ctx, taskID, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	// task still holds the comments that existed before this one.
	s.notifier.NotifyCommenters(ctx, c.ID, task, text)
	s.record(ctx, c, models.ActionTaskCommented, activity.TaskTarget(task), nil)
	s.publisher.Publish(events.TaskCommented, c.ID, task.ID, comment)
	return &comment, nil
}

func (s *Service) commentForEdit(ctx context.Context, c Caller, taskID, commentID primitive.ObjectID) (*models.Task, error) {
	task, err := s.store.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	comment, ok := task.Comment(commentID)
	if !ok {
		return nil, store.ErrNotFound
	}
	if comment.Author != c.ID && c.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *Service) UpdateComment(ctx context.Context, c Caller, taskID, commentID primitive.ObjectID, in CommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, invalid("text", "is required")
	}
	task, err := s.commentForEdit(ctx, c, taskID, commentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.store.Tasks.UpdateComment(ctx, taskID, commentID, text, now); err != nil {
		return nil, err
	}
	comment, _ := task.Comment(commentID)
	comment.Text = text
	comment.UpdatedAt = &now
	s.record(ctx, c, models.ActionCommentUpdated, activity.CommentTarget(task, commentID), nil)
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, c Caller, taskID, commentID primitive.ObjectID) error {
	task, err := s.commentForEdit(ctx, c, taskID, commentID)
	if err != nil {
		return err
	}
	if err := s.store.Tasks.DeleteComment(ctx, taskID, commentID); err != nil {
		return err
	}
	s.record(ctx, c, models.ActionCommentDeleted, activity.CommentTarget(task, commentID), nil)
	return nil
}
