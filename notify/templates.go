package notify

import (
	"fmt"

	"github.com/purbarunBC13/team-tracker/models"
)

const commentPreviewLen = 50

type template struct {
	title  string
	format string
}

var taskTemplates = map[models.NotificationType]template{
	models.NotificationTaskAssigned:   {"New Task Assigned", `You have been assigned a new task: "%s"`},
	models.NotificationTaskUpdated:    {"Task Updated", `Task "%s" has been updated`},
	models.NotificationTaskCompleted:  {"Task Completed", `Task "%s" has been marked as completed`},
	models.NotificationTaskReassigned: {"Task Reassigned", `You have been assigned to task: "%s"`},
}

var genericTaskTemplate = template{"Task Notification", `There is an update on task: "%s"`}

func taskContent(eventType models.NotificationType, taskTitle string) (string, string) {
	tpl, ok := taskTemplates[eventType]
	if !ok {
		tpl = genericTaskTemplate
	}
	return tpl.title, fmt.Sprintf(tpl.format, taskTitle)
}

func commentContent(taskTitle, text string) (string, string) {
	return "New Comment", fmt.Sprintf(`New comment on task "%s": %s`, taskTitle, Preview(text, commentPreviewLen))
}

func projectContent(projectTitle string) (string, string) {
	return "Project Assigned", fmt.Sprintf(`You are now the owner of project: "%s"`, projectTitle)
}

// Preview cuts text to at most n characters, appending "..." when it was longer.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
