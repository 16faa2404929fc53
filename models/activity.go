package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is the closed set of audited mutations. The same list backs the
// recorder's validation and the activity collection's schema validator.
type Action string

const (
	ActionUserRegistered  Action = "user_registered"
	ActionUserLogin       Action = "user_login"
	ActionUserLogout      Action = "user_logout"
	ActionProfileUpdated  Action = "profile_updated"
	ActionPasswordChanged Action = "password_changed"

	ActionProjectCreated      Action = "project_created"
	ActionProjectUpdated      Action = "project_updated"
	ActionProjectDeleted      Action = "project_deleted"
	ActionProjectOwnerChanged Action = "project_owner_changed"

	ActionTaskCreated       Action = "task_created"
	ActionTaskUpdated       Action = "task_updated"
	ActionTaskDeleted       Action = "task_deleted"
	ActionTaskAssigned      Action = "task_assigned"
	ActionTaskStatusChanged Action = "task_status_changed"
	ActionTaskCompleted     Action = "task_completed"
	ActionTaskCommented     Action = "task_commented"

	ActionCommentUpdated Action = "comment_updated"
	ActionCommentDeleted Action = "comment_deleted"

	ActionTeamMemberAdded   Action = "team_member_added"
	ActionTeamMemberUpdated Action = "team_member_updated"
	ActionTeamMemberRemoved Action = "team_member_removed"
)

var AllActions = []Action{
	ActionUserRegistered, ActionUserLogin, ActionUserLogout, ActionProfileUpdated, ActionPasswordChanged,
	ActionProjectCreated, ActionProjectUpdated, ActionProjectDeleted, ActionProjectOwnerChanged,
	ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted, ActionTaskAssigned, ActionTaskStatusChanged,
	ActionTaskCompleted, ActionTaskCommented,
	ActionCommentUpdated, ActionCommentDeleted,
	ActionTeamMemberAdded, ActionTeamMemberUpdated, ActionTeamMemberRemoved,
}

func (a Action) Valid() bool {
	for _, k := range AllActions {
		if a == k {
			return true
		}
	}
	return false
}

// ActionFamily groups actions that share a description template.
type ActionFamily string

const (
	FamilyAuth       ActionFamily = "auth"
	FamilyProject    ActionFamily = "project"
	FamilyTask       ActionFamily = "task"
	FamilyComment    ActionFamily = "comment"
	FamilyTeamMember ActionFamily = "team_member"
	FamilyOther      ActionFamily = "other"
)

func (a Action) Family() ActionFamily {
	switch a {
	case ActionUserRegistered, ActionUserLogin, ActionUserLogout, ActionProfileUpdated, ActionPasswordChanged:
		return FamilyAuth
	case ActionProjectCreated, ActionProjectUpdated, ActionProjectDeleted, ActionProjectOwnerChanged:
		return FamilyProject
	case ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted, ActionTaskAssigned,
		ActionTaskStatusChanged, ActionTaskCompleted, ActionTaskCommented:
		return FamilyTask
	case ActionCommentUpdated, ActionCommentDeleted:
		return FamilyComment
	case ActionTeamMemberAdded, ActionTeamMemberUpdated, ActionTeamMemberRemoved:
		return FamilyTeamMember
	}
	return FamilyOther
}

type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
	EntityComment EntityType = "comment"
)

type ActivityLog struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Actor             primitive.ObjectID     `bson:"actor" json:"actor"`
	Action            Action                 `bson:"action" json:"action"`
	Description       string                 `bson:"description" json:"description"`
	EntityType        EntityType             `bson:"entityType,omitempty" json:"entityType,omitempty"`
	EntityID          *primitive.ObjectID    `bson:"entityId,omitempty" json:"entityId,omitempty"`
	EntityName        string                 `bson:"entityName,omitempty" json:"entityName,omitempty"`
	RelatedEntityType EntityType             `bson:"relatedEntityType,omitempty" json:"relatedEntityType,omitempty"`
	RelatedEntityID   *primitive.ObjectID    `bson:"relatedEntityId,omitempty" json:"relatedEntityId,omitempty"`
	RelatedEntityName string                 `bson:"relatedEntityName,omitempty" json:"relatedEntityName,omitempty"`
	Metadata          map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IPAddress         string                 `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent         string                 `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	CreatedAt         time.Time              `bson:"createdAt" json:"createdAt"`
}
