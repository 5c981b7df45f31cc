package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/policy"
	"github.com/HKazz/project-3-back-end/repositories"
)

type TaskService struct {
	store      repositories.Store
	projects   *ProjectService
	notifier   *NotificationService
	deleteMode policy.TaskDeleteMode
	now        func() time.Time
}

func NewTaskService(store repositories.Store, projects *ProjectService, notifier *NotificationService, deleteMode policy.TaskDeleteMode) *TaskService {
	return &TaskService{store: store, projects: projects, notifier: notifier, deleteMode: deleteMode, now: time.Now}
}

// Create inserts a task under projectID and links it to the project in one
// transaction. The task's manager is always the project's manager.
func (s *TaskService) Create(ctx context.Context, projectID primitive.ObjectID, input models.TaskInput, actor models.Identity) (*models.Task, error) {
	project, err := s.store.Projects().FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageProject(actor, project); err != nil {
		return nil, err
	}

	name, err := requireText(input.Name, "task name")
	if err != nil {
		return nil, err
	}
	description, err := requireText(input.Description, "task description")
	if err != nil {
		return nil, err
	}
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	start := input.StartDate.Time
	if start.IsZero() {
		start = now
	}
	end := input.EndDate.Ptr()
	if err := checkDates(start, end); err != nil {
		return nil, err
	}
	if input.AssignedUser != nil {
		if _, err := s.store.Users().FindByID(ctx, *input.AssignedUser); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Description:    description,
		StartDate:      start,
		EndDate:        end,
		Priority:       priority,
		Status:         status,
		AssignedUser:   input.AssignedUser,
		ProjectManager: project.ProjectManager,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Tasks().Create(ctx, task); err != nil {
			return err
		}
		return s.projects.AddTask(ctx, projectID, task.ID)
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: task %s created in project %s", task.ID.Hex(), projectID.Hex())
	if task.AssignedUser != nil {
		s.notifier.Notify(ctx, *task.AssignedUser, fmt.Sprintf("You have been assigned to task %q in project %q", task.Name, project.Name))
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return s.store.Tasks().FindByID(ctx, id)
}

// ListForProject returns the project's tasks in the order they were linked.
func (s *TaskService) ListForProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	project, err := s.store.Projects().FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.store.Tasks().FindByIDs(ctx, project.Tasks)
}

// Update applies patch. The manager and the assignee may update; status and
// priority move freely between their allowed values.
func (s *TaskService) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, actor models.Identity) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanEditTask(actor, task); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrInvalidInput)
	}
	if patch.Name != nil {
		name, err := requireText(*patch.Name, "task name")
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		description, err := requireText(*patch.Description, "task description")
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", *patch.Priority, models.ErrInvalidInput)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *patch.Status, models.ErrInvalidInput)
	}
	if err := checkDates(mergeDates(task.StartDate, task.EndDate, patch.StartDate, patch.EndDate)); err != nil {
		return nil, err
	}

	if err := s.store.Tasks().Update(ctx, id, patch, s.now().UTC()); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: task %s updated by %s", id.Hex(), actor.Username)
	return s.store.Tasks().FindByID(ctx, id)
}

// owningProject returns the project that lists the task, or nil when the task is orphaned.
func (s *TaskService) owningProject(ctx context.Context, taskID primitive.ObjectID) (*models.Project, error) {
	project, err := s.store.Projects().FindByTaskID(ctx, taskID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return project, err
}

// Reassign hands the task to userID. Only the owning project's manager may reassign.
func (s *TaskService) Reassign(ctx context.Context, id, userID primitive.ObjectID, actor models.Identity) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.owningProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReassignTask(actor, project, task); err != nil {
		return nil, err
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("assigned user is required: %w", models.ErrInvalidInput)
	}
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}

	previous := task.AssignedUser
	if err := s.store.Tasks().SetAssignee(ctx, id, &userID, s.now().UTC()); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_ASSIGNED, Description: task %s assigned to %s by %s", id.Hex(), userID.Hex(), actor.Username)
	if previous == nil || *previous != userID {
		s.notifier.Notify(ctx, userID, fmt.Sprintf("You have been assigned to task %q", task.Name))
		if previous != nil {
			s.notifier.Notify(ctx, *previous, fmt.Sprintf("You have been unassigned from task %q", task.Name))
		}
	}
	return s.store.Tasks().FindByID(ctx, id)
}

// Unassign clears the assignee. Clearing an unassigned task is a no-op.
func (s *TaskService) Unassign(ctx context.Context, id primitive.ObjectID, actor models.Identity) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUnassignTask(actor, task); err != nil {
		return nil, err
	}
	if task.AssignedUser == nil {
		return task, nil
	}

	previous := *task.AssignedUser
	if err := s.store.Tasks().SetAssignee(ctx, id, nil, s.now().UTC()); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_UNASSIGNED, Description: task %s unassigned by %s", id.Hex(), actor.Username)
	s.notifier.Notify(ctx, previous, fmt.Sprintf("You have been unassigned from task %q", task.Name))
	return s.store.Tasks().FindByID(ctx, id)
}

// Delete removes the task and unlinks it from its project in one transaction.
func (s *TaskService) Delete(ctx context.Context, id primitive.ObjectID, actor models.Identity) (*models.Task, error) {
	var deleted *models.Task
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		task, err := s.store.Tasks().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CanDeleteTask(actor, task, s.deleteMode); err != nil {
			return err
		}
		project, err := s.owningProject(ctx, id)
		if err != nil {
			return err
		}
		if err := s.store.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		if project != nil {
			if err := s.store.Projects().RemoveTask(ctx, project.ID, id); err != nil {
				return err
			}
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: task %s deleted by %s", id.Hex(), actor.Username)
	return deleted, nil
}
