package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/config"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/policy"
)

func TestTaskInheritsProjectManager(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)

	task := env.createTask(t, project, "T1", manager)
	assert.Equal(t, project.ProjectManager, task.ProjectManager)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusNotStarted, task.Status)

	got, err := env.projects.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{task.ID}, got.Tasks)
}

func TestOnlyManagerCreatesTasks(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	u1 := env.register(t, "u1")
	project := env.createProject(t, "P1", manager)
	_, err := env.projects.AddMembers(ctx, project.ID, []models.TeamMember{member(u1, "dev")}, manager)
	require.NoError(t, err)

	_, err = env.tasks.Create(ctx, project.ID, models.TaskInput{Name: "T", Description: "d"}, u1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.tasks.Create(ctx, primitive.NewObjectID(), models.TaskInput{Name: "T", Description: "d"}, manager)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)
	ghost := primitive.NewObjectID()

	cases := []struct {
		name  string
		input models.TaskInput
		want  error
	}{
		{"missing name", models.TaskInput{Description: "d"}, models.ErrInvalidInput},
		{"missing description", models.TaskInput{Name: "T"}, models.ErrInvalidInput},
		{"bad priority", models.TaskInput{Name: "T", Description: "d", Priority: "urgent"}, models.ErrInvalidInput},
		{"bad status", models.TaskInput{Name: "T", Description: "d", Status: "Done"}, models.ErrInvalidInput},
		{"unknown assignee", models.TaskInput{Name: "T", Description: "d", AssignedUser: &ghost}, models.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tasks.Create(ctx, project.ID, tc.input, manager)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	got, err := env.projects.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tasks)
}

func TestCreateTaskRollsBackWhenLinkFails(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)

	env.store.FailOn("projects.AddTask", assert.AnError)
	_, err := env.tasks.Create(ctx, project.ID, models.TaskInput{Name: "T", Description: "d"}, manager)
	require.ErrorIs(t, err, models.ErrUnavailable)

	tasks, err := env.tasks.ListForProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskEditScenario(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	u1 := env.register(t, "u1")
	u2 := env.register(t, "u2")
	project := env.createProject(t, "P1", manager)
	task := env.createTask(t, project, "T", manager)
	require.Nil(t, task.AssignedUser)

	status := models.StatusInProgress
	_, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{Status: &status}, u2)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.tasks.Reassign(ctx, task.ID, u1.ID, manager)
	require.NoError(t, err)

	got, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{Status: &status}, u1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.True(t, got.IsAssignedTo(u1.ID))
}

func TestStatusMovesFreely(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	task := env.createTask(t, env.createProject(t, "P1", manager), "T", manager)

	for _, status := range []models.Status{models.StatusCompleted, models.StatusNotStarted, models.StatusInProgress} {
		status := status
		got, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{Status: &status}, manager)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	bad := models.Priority("urgent")
	_, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{Priority: &bad}, manager)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateTaskEndDate(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	task := env.createTask(t, env.createProject(t, "P1", manager), "T", manager)

	_, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{EndDate: models.SetDate(task.StartDate.AddDate(0, 0, -1))}, manager)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	end := task.StartDate.AddDate(0, 0, 7)
	got, err := env.tasks.Update(ctx, task.ID, models.TaskPatch{EndDate: models.SetDate(end)}, manager)
	require.NoError(t, err)
	require.NotNil(t, got.EndDate)
	assert.True(t, end.Equal(*got.EndDate))

	got, err = env.tasks.Update(ctx, task.ID, models.TaskPatch{EndDate: models.ClearDate()}, manager)
	require.NoError(t, err)
	assert.Nil(t, got.EndDate)
}

func TestReassignRules(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	u1 := env.register(t, "u1")
	u2 := env.register(t, "u2")
	project := env.createProject(t, "P1", manager)
	task := env.createTask(t, project, "T", manager)
	_, err := env.tasks.Reassign(ctx, task.ID, u1.ID, manager)
	require.NoError(t, err)

	_, err = env.tasks.Reassign(ctx, task.ID, u2.ID, u1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.tasks.Reassign(ctx, task.ID, primitive.NewObjectID(), manager)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := env.tasks.Reassign(ctx, task.ID, u2.ID, manager)
	require.NoError(t, err)
	assert.True(t, got.IsAssignedTo(u2.ID))

	notes, err := env.notifier.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0].Message, "unassigned")
}

func TestReassignOrphanedTaskFallsBackToTaskManager(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	u1 := env.register(t, "u1")
	project := env.createProject(t, "P1", manager)
	task := env.createTask(t, project, "T", manager)
	_, err := env.projects.Delete(ctx, project.ID, manager)
	require.NoError(t, err)

	_, err = env.tasks.Reassign(ctx, task.ID, u1.ID, u1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := env.tasks.Reassign(ctx, task.ID, u1.ID, manager)
	require.NoError(t, err)
	assert.True(t, got.IsAssignedTo(u1.ID))
}

func TestUnassign(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	u1 := env.register(t, "u1")
	task := env.createTask(t, env.createProject(t, "P1", manager), "T", manager)
	_, err := env.tasks.Reassign(ctx, task.ID, u1.ID, manager)
	require.NoError(t, err)

	_, err = env.tasks.Unassign(ctx, task.ID, u1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := env.tasks.Unassign(ctx, task.ID, manager)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedUser)

	got, err = env.tasks.Unassign(ctx, task.ID, manager)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedUser)
}

func TestDeleteTaskUnlinksFromProject(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)
	t1 := env.createTask(t, project, "T1", manager)
	t2 := env.createTask(t, project, "T2", manager)

	_, err := env.tasks.Delete(ctx, t1.ID, manager)
	require.NoError(t, err)

	_, err = env.tasks.Get(ctx, t1.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	got, err := env.projects.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{t2.ID}, got.Tasks)
}

func TestDeleteTaskRollsBackWhenUnlinkFails(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)
	task := env.createTask(t, project, "T1", manager)

	env.store.FailOn("projects.RemoveTask", assert.AnError)
	_, err := env.tasks.Delete(ctx, task.ID, manager)
	require.ErrorIs(t, err, models.ErrUnavailable)

	_, err = env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	got, err := env.projects.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{task.ID}, got.Tasks)
}

func TestDeleteTaskPolicy(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		mode          policy.TaskDeleteMode
		assigneeError error
	}{
		{policy.DeleteByManager, models.ErrForbidden},
		{policy.DeleteByManagerOrAssignee, nil},
	} {
		t.Run(string(tc.mode), func(t *testing.T) {
			env := newTestEnv(t, config.OrphanTasks, tc.mode)
			manager := env.register(t, "m")
			u1 := env.register(t, "u1")
			u2 := env.register(t, "u2")
			task := env.createTask(t, env.createProject(t, "P1", manager), "T", manager)
			_, err := env.tasks.Reassign(ctx, task.ID, u1.ID, manager)
			require.NoError(t, err)

			_, err = env.tasks.Delete(ctx, task.ID, u2)
			assert.ErrorIs(t, err, models.ErrForbidden)

			_, err = env.tasks.Delete(ctx, task.ID, u1)
			if tc.assigneeError != nil {
				assert.ErrorIs(t, err, tc.assigneeError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListForProjectKeepsOrder(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	manager := env.register(t, "m")
	project := env.createProject(t, "P1", manager)
	t1 := env.createTask(t, project, "T1", manager)
	t2 := env.createTask(t, project, "T2", manager)

	tasks, err := env.tasks.ListForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, t1.ID, tasks[0].ID)
	assert.Equal(t, t2.ID, tasks[1].ID)
}
