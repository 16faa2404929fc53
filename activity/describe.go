package activity

import (
	"fmt"

	"github.com/purbarunBC13/team-tracker/models"
)

const (
	unknownUser   = "a user"
	unknownEntity = "unknown"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func metaString(meta Metadata, key, def string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return orDefault(s, def)
	}
	return fmt.Sprint(v)
}

// Describe renders the human readable line stored with an activity entry.
// Missing names and metadata degrade to placeholders.
func Describe(action models.Action, target Target, meta Metadata) string {
	switch action.Family() {
	case models.FamilyAuth:
		return describeAuth(action, target)
	case models.FamilyProject:
		return describeProject(action, target, meta)
	case models.FamilyTask:
		return describeTask(action, target, meta)
	case models.FamilyComment:
		return describeComment(action, target)
	case models.FamilyTeamMember:
		return describeTeamMember(action, target, meta)
	}
	return fmt.Sprintf("Performed %s on %s", orDefault(string(action), "an action"), orDefault(target.Name, unknownEntity))
}

func describeAuth(action models.Action, target Target) string {
	who := orDefault(target.Name, unknownUser)
	switch action {
	case models.ActionUserRegistered:
		return fmt.Sprintf("%s registered a new account", who)
	case models.ActionUserLogin:
		return fmt.Sprintf("%s logged in", who)
	case models.ActionUserLogout:
		return fmt.Sprintf("%s logged out", who)
	case models.ActionProfileUpdated:
		return fmt.Sprintf("%s updated their profile", who)
	default:
		return fmt.Sprintf("%s changed their password", who)
	}
}

func describeProject(action models.Action, target Target, meta Metadata) string {
	title := orDefault(target.Name, unknownEntity)
	switch action {
	case models.ActionProjectCreated:
		return fmt.Sprintf(`Created project "%s"`, title)
	case models.ActionProjectUpdated:
		return fmt.Sprintf(`Updated project "%s"`, title)
	case models.ActionProjectDeleted:
		return fmt.Sprintf(`Deleted project "%s"`, title)
	default:
		return fmt.Sprintf(`Assigned project "%s" to %s`, title, metaString(meta, MetaOwnerName, unknownUser))
	}
}

func describeTask(action models.Action, target Target, meta Metadata) string {
	title := orDefault(target.Name, unknownEntity)
	switch action {
	case models.ActionTaskCreated:
		return fmt.Sprintf(`Created task "%s" with %s priority and assigned it to %s`,
			title, metaString(meta, MetaPriority, unknownEntity), metaString(meta, MetaAssigneeName, unknownUser))
	case models.ActionTaskUpdated:
		return fmt.Sprintf(`Updated task "%s"`, title)
	case models.ActionTaskDeleted:
		return fmt.Sprintf(`Deleted task "%s"`, title)
	case models.ActionTaskAssigned:
		return fmt.Sprintf(`Assigned task "%s" to %s`, title, metaString(meta, MetaAssigneeName, unknownUser))
	case models.ActionTaskStatusChanged:
		return fmt.Sprintf(`Changed status of task "%s" to %s`, title, metaString(meta, MetaNewStatus, unknownEntity))
	case models.ActionTaskCompleted:
		return fmt.Sprintf(`Completed task "%s"`, title)
	default:
		return fmt.Sprintf(`Commented on task "%s"`, title)
	}
}

func describeComment(action models.Action, target Target) string {
	title := unknownEntity
	if target.Related != nil {
		title = orDefault(target.Related.Name, unknownEntity)
	}
	if action == models.ActionCommentUpdated {
		return fmt.Sprintf(`Edited a comment on task "%s"`, title)
	}
	return fmt.Sprintf(`Deleted a comment on task "%s"`, title)
}

func describeTeamMember(action models.Action, target Target, meta Metadata) string {
	who := orDefault(target.Name, unknownUser)
	switch action {
	case models.ActionTeamMemberAdded:
		return fmt.Sprintf("Added %s to the team as %s", who, metaString(meta, MetaRole, unknownEntity))
	case models.ActionTeamMemberUpdated:
		return fmt.Sprintf("Updated team member %s", who)
	default:
		return fmt.Sprintf("Removed %s from the team", who)
	}
}
