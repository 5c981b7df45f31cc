package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/models"
)

type memoryTxKey struct{}

// MemoryStore is a process-local Store used for development runs and tests.
// A transaction holds the store lock for its whole duration and restores a
// snapshot when fn fails, which gives the same all-or-nothing outcome as a
// Mongo transaction.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	projects map[primitive.ObjectID]models.Project
	tasks    map[primitive.ObjectID]models.Task
	failures map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[primitive.ObjectID]models.User{},
		projects: map[primitive.ObjectID]models.Project{},
		tasks:    map[primitive.ObjectID]models.Task{},
		failures: map[string]error{},
	}
}

func (s *MemoryStore) Users() UserRepository       { return memoryUsers{s} }
func (s *MemoryStore) Projects() ProjectRepository { return memoryProjects{s} }
func (s *MemoryStore) Tasks() TaskRepository       { return memoryTasks{s} }

// FailOn makes the next call of op (for example "projects.AddTask") fail with err,
// reported as a store outage.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, projects, tasks := s.snapshot()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		s.users, s.projects, s.tasks = users, projects, tasks
		return err
	}
	return nil
}

func (s *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore)
	return owner == s
}

// begin takes the store lock unless ctx already runs inside this store's
// transaction, and reports any failure injected for op.
func (s *MemoryStore) begin(ctx context.Context, op string) (func(), error) {
	unlock := func() {}
	if !s.inTx(ctx) {
		s.mu.Lock()
		unlock = s.mu.Unlock
	}
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, unavailable(err)
	}
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		unlock()
		return nil, unavailable(fmt.Errorf("%s: %w", op, err))
	}
	return unlock, nil
}

func (s *MemoryStore) snapshot() (map[primitive.ObjectID]models.User, map[primitive.ObjectID]models.Project, map[primitive.ObjectID]models.Task) {
	users := make(map[primitive.ObjectID]models.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	projects := make(map[primitive.ObjectID]models.Project, len(s.projects))
	for k, v := range s.projects {
		projects[k] = cloneProject(v)
	}
	tasks := make(map[primitive.ObjectID]models.Task, len(s.tasks))
	for k, v := range s.tasks {
		tasks[k] = cloneTask(v)
	}
	return users, projects, tasks
}

func cloneProject(p models.Project) models.Project {
	p.TeamMembers = append([]models.TeamMember{}, p.TeamMembers...)
	p.Tasks = append([]primitive.ObjectID{}, p.Tasks...)
	if p.EndDate != nil {
		end := *p.EndDate
		p.EndDate = &end
	}
	return p
}

func cloneTask(t models.Task) models.Task {
	if t.EndDate != nil {
		end := *t.EndDate
		t.EndDate = &end
	}
	if t.AssignedUser != nil {
		user := *t.AssignedUser
		t.AssignedUser = &user
	}
	return t
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	unlock, err := r.s.begin(ctx, "users.Create")
	if err != nil {
		return err
	}
	defer unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q already taken: %w", user.Username, models.ErrConflict)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	unlock, err := r.s.begin(ctx, "users.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)
	}
	return &u, nil
}

func (r memoryUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	unlock, err := r.s.begin(ctx, "users.FindByUsername")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
}

type memoryProjects struct{ s *MemoryStore }

func (r memoryProjects) Create(ctx context.Context, project *models.Project) error {
	unlock, err := r.s.begin(ctx, "projects.Create")
	if err != nil {
		return err
	}
	defer unlock()

	if r.nameTaken(project.Name, primitive.NilObjectID) {
		return fmt.Errorf("project with name %q already exists: %w", project.Name, models.ErrConflict)
	}
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	if project.TeamMembers == nil {
		project.TeamMembers = []models.TeamMember{}
	}
	if project.Tasks == nil {
		project.Tasks = []primitive.ObjectID{}
	}
	r.s.projects[project.ID] = cloneProject(*project)
	return nil
}

func (r memoryProjects) nameTaken(name string, except primitive.ObjectID) bool {
	for id, p := range r.s.projects {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}

func (r memoryProjects) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	unlock, err := r.s.begin(ctx, "projects.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	p = cloneProject(p)
	return &p, nil
}

func (r memoryProjects) FindByTaskID(ctx context.Context, taskID primitive.ObjectID) (*models.Project, error) {
	unlock, err := r.s.begin(ctx, "projects.FindByTaskID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, p := range r.s.projects {
		for _, t := range p.Tasks {
			if t == taskID {
				p = cloneProject(p)
				return &p, nil
			}
		}
	}
	return nil, fmt.Errorf("project owning task %s: %w", taskID.Hex(), models.ErrNotFound)
}

func (r memoryProjects) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	unlock, err := r.s.begin(ctx, "projects.ListForUser")
	if err != nil {
		return nil, err
	}
	defer unlock()

	projects := []models.Project{}
	for _, p := range r.s.projects {
		if p.ProjectManager == userID || p.HasMember(userID) {
			projects = append(projects, cloneProject(p))
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID.Hex() < projects[j].ID.Hex()
		}
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r memoryProjects) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch, now time.Time) error {
	unlock, err := r.s.begin(ctx, "projects.Update")
	if err != nil {
		return err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	if patch.Name != nil {
		if r.nameTaken(*patch.Name, id) {
			return fmt.Errorf("project name already in use: %w", models.ErrConflict)
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate.Time
	}
	if patch.EndDate.Set {
		p.EndDate = nil
		if patch.EndDate.Value != nil {
			end := *patch.EndDate.Value
			p.EndDate = &end
		}
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.UpdatedAt = now
	r.s.projects[id] = p
	return nil
}

func (r memoryProjects) Delete(ctx context.Context, id primitive.ObjectID) error {
	unlock, err := r.s.begin(ctx, "projects.Delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	delete(r.s.projects, id)
	return nil
}

func (r memoryProjects) AddMembers(ctx context.Context, id primitive.ObjectID, members []models.TeamMember, now time.Time) error {
	unlock, err := r.s.begin(ctx, "projects.AddMembers")
	if err != nil {
		return err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	for _, m := range members {
		if p.HasMember(m.User) {
			return fmt.Errorf("one or more members are already on project %s: %w", id.Hex(), models.ErrConflict)
		}
	}
	p = cloneProject(p)
	p.TeamMembers = append(p.TeamMembers, members...)
	p.UpdatedAt = now
	r.s.projects[id] = p
	return nil
}

func (r memoryProjects) RemoveMember(ctx context.Context, id, userID primitive.ObjectID, now time.Time) error {
	unlock, err := r.s.begin(ctx, "projects.RemoveMember")
	if err != nil {
		return err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	if !p.HasMember(userID) {
		return fmt.Errorf("user %s is not a member of project %s: %w", userID.Hex(), id.Hex(), models.ErrNotFound)
	}
	kept := make([]models.TeamMember, 0, len(p.TeamMembers)-1)
	for _, m := range p.TeamMembers {
		if m.User != userID {
			kept = append(kept, m)
		}
	}
	p.TeamMembers = kept
	p.UpdatedAt = now
	r.s.projects[id] = p
	return nil
}

func (r memoryProjects) AddTask(ctx context.Context, id, taskID primitive.ObjectID) error {
	unlock, err := r.s.begin(ctx, "projects.AddTask")
	if err != nil {
		return err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	for _, t := range p.Tasks {
		if t == taskID {
			return nil
		}
	}
	p = cloneProject(p)
	p.Tasks = append(p.Tasks, taskID)
	r.s.projects[id] = p
	return nil
}

func (r memoryProjects) RemoveTask(ctx context.Context, id, taskID primitive.ObjectID) error {
	unlock, err := r.s.begin(ctx, "projects.RemoveTask")
	if err != nil {
		return err
	}
	defer unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	kept := make([]primitive.ObjectID, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if t != taskID {
			kept = append(kept, t)
		}
	}
	p.Tasks = kept
	r.s.projects[id] = p
	return nil
}

type memoryTasks struct{ s *MemoryStore }

func (r memoryTasks) Create(ctx context.Context, task *models.Task) error {
	unlock, err := r.s.begin(ctx, "tasks.Create")
	if err != nil {
		return err
	}
	defer unlock()

	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r memoryTasks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	unlock, err := r.s.begin(ctx, "tasks.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
	}
	t = cloneTask(t)
	return &t, nil
}

func (r memoryTasks) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error) {
	unlock, err := r.s.begin(ctx, "tasks.FindByIDs")
	if err != nil {
		return nil, err
	}
	defer unlock()

	tasks := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.s.tasks[id]; ok {
			tasks = append(tasks, cloneTask(t))
		}
	}
	return tasks, nil
}

func (r memoryTasks) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, now time.Time) error {
	unlock, err := r.s.begin(ctx, "tasks.Update")
	if err != nil {
		return err
	}
	defer unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.StartDate != nil {
		t.StartDate = patch.StartDate.Time
	}
	if patch.EndDate.Set {
		t.EndDate = nil
		if patch.EndDate.Value != nil {
			end := *patch.EndDate.Value
			t.EndDate = &end
		}
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = now
	r.s.tasks[id] = t
	return nil
}

func (r memoryTasks) SetAssignee(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID, now time.Time) error {
	unlock, err := r.s.begin(ctx, "tasks.SetAssignee")
	if err != nil {
		return err
	}
	defer unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
	}
	t.AssignedUser = nil
	if userID != nil {
		user := *userID
		t.AssignedUser = &user
	}
	t.UpdatedAt = now
	r.s.tasks[id] = t
	return nil
}

func (r memoryTasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	unlock, err := r.s.begin(ctx, "tasks.Delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
	}
	delete(r.s.tasks, id)
	return nil
}

func (r memoryTasks) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	unlock, err := r.s.begin(ctx, "tasks.DeleteMany")
	if err != nil {
		return err
	}
	defer unlock()

	for _, id := range ids {
		delete(r.s.tasks, id)
	}
	return nil
}
