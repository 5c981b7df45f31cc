// Package policy holds the authorization decisions for projects and tasks.
// Every function is pure: it inspects already-loaded aggregates and returns nil
// when the actor may proceed or an error wrapping models.ErrForbidden.
package policy

import (
	"fmt"

	"github.com/HKazz/project-3-back-end/models"
)

// TaskDeleteMode selects who may delete a task.
type TaskDeleteMode string

const (
	DeleteByManager           TaskDeleteMode = "manager"
	DeleteByManagerOrAssignee TaskDeleteMode = "manager-or-assignee"
)

func ParseTaskDeleteMode(s string) (TaskDeleteMode, error) {
	switch TaskDeleteMode(s) {
	case "", DeleteByManager:
		return DeleteByManager, nil
	case DeleteByManagerOrAssignee:
		return DeleteByManagerOrAssignee, nil
	}
	return "", fmt.Errorf("unknown task delete policy %q", s)
}

func CanManageProject(actor models.Identity, project *models.Project) error {
	if project.ProjectManager != actor.ID {
		return fmt.Errorf("user %s does not manage project %s: %w", actor.Username, project.ID.Hex(), models.ErrForbidden)
	}
	return nil
}

func CanEditTask(actor models.Identity, task *models.Task) error {
	if task.ProjectManager == actor.ID || task.IsAssignedTo(actor.ID) {
		return nil
	}
	return fmt.Errorf("user %s is neither manager nor assignee of task %s: %w", actor.Username, task.ID.Hex(), models.ErrForbidden)
}

// CanReassignTask is stricter than CanEditTask: only the manager of the owning
// project may change the assignee. A task whose project is gone falls back to
// the manager recorded on the task.
func CanReassignTask(actor models.Identity, project *models.Project, task *models.Task) error {
	if project == nil {
		if task.ProjectManager != actor.ID {
			return fmt.Errorf("user %s may not reassign task %s: %w", actor.Username, task.ID.Hex(), models.ErrForbidden)
		}
		return nil
	}
	if err := CanManageProject(actor, project); err != nil {
		return fmt.Errorf("reassign task %s: %w", task.ID.Hex(), err)
	}
	return nil
}

func CanUnassignTask(actor models.Identity, task *models.Task) error {
	if task.ProjectManager != actor.ID {
		return fmt.Errorf("user %s may not unassign task %s: %w", actor.Username, task.ID.Hex(), models.ErrForbidden)
	}
	return nil
}

func CanDeleteTask(actor models.Identity, task *models.Task, mode TaskDeleteMode) error {
	if mode == DeleteByManagerOrAssignee {
		return CanEditTask(actor, task)
	}
	if task.ProjectManager != actor.ID {
		return fmt.Errorf("only the manager may delete task %s: %w", task.ID.Hex(), models.ErrForbidden)
	}
	return nil
}
