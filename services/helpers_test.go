package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HKazz/project-3-back-end/config"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/policy"
	"github.com/HKazz/project-3-back-end/repositories"
)

type testEnv struct {
	store         *repositories.MemoryStore
	notifications *repositories.MemoryNotificationRepository
	auth          *AuthService
	projects      *ProjectService
	tasks         *TaskService
	notifier      *NotificationService
}

func newTestEnv(t *testing.T, deletePolicy config.ProjectDeletePolicy, deleteMode policy.TaskDeleteMode) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	notifications := repositories.NewMemoryNotificationRepository()
	notifier := NewNotificationService(notifications)
	projects := NewProjectService(store, notifier, deletePolicy)
	return &testEnv{
		store:         store,
		notifications: notifications,
		auth:          NewAuthService(store.Users(), NewJWTService("test-secret", time.Hour), bcrypt.MinCost),
		projects:      projects,
		tasks:         NewTaskService(store, projects, notifier, deleteMode),
		notifier:      notifier,
	}
}

func defaultEnv(t *testing.T) *testEnv {
	return newTestEnv(t, config.OrphanTasks, policy.DeleteByManager)
}

func (e *testEnv) register(t *testing.T, username string) models.Identity {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, "secret-"+username)
	require.NoError(t, err)
	return user.Identity()
}

func (e *testEnv) createProject(t *testing.T, name string, manager models.Identity) *models.Project {
	t.Helper()
	project, err := e.projects.Create(context.Background(), models.ProjectInput{
		Name:      name,
		StartDate: models.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}, manager)
	require.NoError(t, err)
	return project
}

func (e *testEnv) createTask(t *testing.T, project *models.Project, name string, actor models.Identity) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), project.ID, models.TaskInput{
		Name:        name,
		Description: name + " description",
	}, actor)
	require.NoError(t, err)
	return task
}

func member(user models.Identity, part string) models.TeamMember {
	return models.TeamMember{User: user.ID, Name: user.Username, Part: part}
}
