package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/config"
	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/policy"
	"github.com/HKazz/project-3-back-end/repositories"
)

type ProjectService struct {
	store        repositories.Store
	notifier     *NotificationService
	deletePolicy config.ProjectDeletePolicy
	now          func() time.Time
}

func NewProjectService(store repositories.Store, notifier *NotificationService, deletePolicy config.ProjectDeletePolicy) *ProjectService {
	return &ProjectService{store: store, notifier: notifier, deletePolicy: deletePolicy, now: time.Now}
}

// Create stores a new project managed by actor.
func (s *ProjectService) Create(ctx context.Context, input models.ProjectInput, actor models.Identity) (*models.Project, error) {
	name, err := requireText(input.Name, "project name")
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

	project := &models.Project{
		Name:           name,
		Description:    input.Description,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		ProjectManager: actor.ID,
		TeamMembers:    []models.TeamMember{},
		Tasks:          []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: project %s created by %s", project.ID.Hex(), actor.Username)
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return s.store.Projects().FindByID(ctx, id)
}

// ListForUser returns the projects the actor manages or is a member of.
func (s *ProjectService) ListForUser(ctx context.Context, actor models.Identity) ([]models.Project, error) {
	return s.store.Projects().ListForUser(ctx, actor.ID)
}

// Update replaces the fields set in patch. Only the manager may update.
func (s *ProjectService) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch, actor models.Identity) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageProject(actor, project); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrInvalidInput)
	}
	if patch.Name != nil {
		name, err := requireText(*patch.Name, "project name")
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *patch.Status, models.ErrInvalidInput)
	}
	if err := checkDates(mergeDates(project.StartDate, project.EndDate, patch.StartDate, patch.EndDate)); err != nil {
		return nil, err
	}

	if err := s.store.Projects().Update(ctx, id, patch, s.now().UTC()); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_UPDATED, Description: project %s updated by %s", id.Hex(), actor.Username)
	return s.store.Projects().FindByID(ctx, id)
}

// Delete removes the project. Its tasks are deleted in the same transaction
// under the cascade policy and left in place otherwise.
func (s *ProjectService) Delete(ctx context.Context, id primitive.ObjectID, actor models.Identity) (*models.Project, error) {
	var deleted *models.Project
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		project, err := s.store.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CanManageProject(actor, project); err != nil {
			return err
		}
		if s.deletePolicy == config.CascadeTasks && len(project.Tasks) > 0 {
			if err := s.store.Tasks().DeleteMany(ctx, project.Tasks); err != nil {
				return err
			}
		}
		if err := s.store.Projects().Delete(ctx, id); err != nil {
			return err
		}
		deleted = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: project %s deleted by %s (policy %s, %d tasks)",
		id.Hex(), actor.Username, s.deletePolicy, len(deleted.Tasks))
	return deleted, nil
}

// AddMembers appends every member in the batch or none of them.
func (s *ProjectService) AddMembers(ctx context.Context, id primitive.ObjectID, members []models.TeamMember, actor models.Identity) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageProject(actor, project); err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("at least one member is required: %w", models.ErrInvalidInput)
	}
	now := s.now().UTC()
	seen := make(map[primitive.ObjectID]bool, len(members))
	batch := make([]models.TeamMember, 0, len(members))
	for _, m := range members {
		if m.User.IsZero() {
			return nil, fmt.Errorf("member user id is required: %w", models.ErrInvalidInput)
		}
		if m.Name, err = requireText(m.Name, "member name"); err != nil {
			return nil, err
		}
		if m.Part, err = requireText(m.Part, "member part"); err != nil {
			return nil, err
		}
		if seen[m.User] {
			return nil, fmt.Errorf("user %s appears more than once in the batch: %w", m.User.Hex(), models.ErrConflict)
		}
		seen[m.User] = true
		if project.HasMember(m.User) {
			return nil, fmt.Errorf("user %s is already a member of project %s: %w", m.User.Hex(), id.Hex(), models.ErrConflict)
		}
		if m.JoinDate.IsZero() {
			m.JoinDate = now
		}
		batch = append(batch, m)
	}
	for _, m := range batch {
		if _, err := s.store.Users().FindByID(ctx, m.User); err != nil {
			return nil, err
		}
	}

	if err := s.store.Projects().AddMembers(ctx, id, batch, now); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: MEMBERS_ADDED, Description: %d members added to project %s", len(batch), id.Hex())
	for _, m := range batch {
		s.notifier.Notify(ctx, m.User, fmt.Sprintf("You have been added to project %q as %s", project.Name, m.Part))
	}
	return s.store.Projects().FindByID(ctx, id)
}

func (s *ProjectService) RemoveMember(ctx context.Context, id, memberID primitive.ObjectID, actor models.Identity) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageProject(actor, project); err != nil {
		return nil, err
	}
	if !project.HasMember(memberID) {
		return nil, fmt.Errorf("user %s is not a member of project %s: %w", memberID.Hex(), id.Hex(), models.ErrNotFound)
	}

	if err := s.store.Projects().RemoveMember(ctx, id, memberID, s.now().UTC()); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: MEMBER_REMOVED, Description: user %s removed from project %s", memberID.Hex(), id.Hex())
	s.notifier.Notify(ctx, memberID, fmt.Sprintf("You have been removed from project %q", project.Name))
	return s.store.Projects().FindByID(ctx, id)
}

// AddTask links taskID to the project. Callers run it inside the transaction
// that creates the task.
func (s *ProjectService) AddTask(ctx context.Context, id, taskID primitive.ObjectID) error {
	return s.store.Projects().AddTask(ctx, id, taskID)
}

// AssignedUsers returns the distinct users assigned to the project's tasks.
func (s *ProjectService) AssignedUsers(ctx context.Context, id primitive.ObjectID) ([]models.Identity, error) {
	project, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().FindByIDs(ctx, project.Tasks)
	if err != nil {
		return nil, err
	}

	users := []models.Identity{}
	seen := map[primitive.ObjectID]bool{}
	for _, task := range tasks {
		if task.AssignedUser == nil || seen[*task.AssignedUser] {
			continue
		}
		seen[*task.AssignedUser] = true
		user, err := s.store.Users().FindByID(ctx, *task.AssignedUser)
		if errors.Is(err, models.ErrNotFound) {
			logging.Logger.Warnf("Event ID: ASSIGNEE_MISSING, Description: task %s: %v", task.ID.Hex(), err)
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user.Identity())
	}
	return users, nil
}
