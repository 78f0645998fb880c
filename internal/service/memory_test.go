package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
)

// memory is an in-process datastore behind the service store interfaces.
type memory struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]model.User
	projects   map[uuid.UUID]model.Project
	members    map[[2]uuid.UUID]model.Membership
	tasks      []model.Task
	comments   []model.Comment
	activities []model.Activity
	appendErr  error
}

func newMemory() *memory {
	return &memory{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[uuid.UUID]model.User{},
		projects: map[uuid.UUID]model.Project{},
		members:  map[[2]uuid.UUID]model.Membership{},
	}
}

func (m *memory) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memory) addUser(username string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	m.users[u.ID] = u
	return u.ID
}

func (m *memory) task(id uuid.UUID) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return model.Task{}
}

type userStore struct{ *memory }

func (s userStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s userStore) find(match func(model.User) bool) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (s userStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username }), nil
}

func (s userStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email }), nil
}

func (s userStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u := s.find(func(u model.User) bool { return u.ID == id }); u != nil {
		return u, nil
	}
	return nil, apperror.ErrNotFound
}

type projectStore struct{ *memory }

func (s projectStore) CreateWithOwner(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = s.tick()
	s.projects[p.ID] = *p
	s.members[[2]uuid.UUID{p.ID, p.OwnerID}] = model.Membership{ProjectID: p.ID, UserID: p.OwnerID, Role: model.RoleOwner}
	return nil
}

func (s projectStore) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &p, nil
}

func (s projectStore) ListForMember(_ context.Context, userID uuid.UUID) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Project
	for key, p := range s.projects {
		if _, ok := s.members[[2]uuid.UUID{key, userID}]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s projectStore) Update(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = *p
	return nil
}

func (s projectStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

type memberStore struct{ *memory }

func (s memberStore) Get(_ context.Context, projectID, userID uuid.UUID) (*model.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[[2]uuid.UUID{projectID, userID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s memberStore) Add(_ context.Context, m *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uuid.UUID{m.ProjectID, m.UserID}
	if _, ok := s.members[key]; ok {
		return apperror.ErrConflict
	}
	m.CreatedAt = s.tick()
	s.members[key] = *m
	return nil
}

func (s memberStore) Remove(_ context.Context, projectID, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uuid.UUID{projectID, userID}
	m, ok := s.members[key]
	if !ok || m.Role != model.RoleMember {
		return 0, apperror.ErrNotFound
	}
	delete(s.members, key)

	var n int64
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ProjectID == projectID && t.AssignedTo != nil && *t.AssignedTo == userID {
			t.AssignedTo = nil
			n++
		}
	}
	return n, nil
}

func (s memberStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]model.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Membership
	for _, m := range s.members {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

type taskStore struct{ *memory }

func (s taskStore) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = s.tick()
	t.UpdatedAt = t.CreatedAt
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s taskStore) index(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s taskStore) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, apperror.ErrNotFound
	}
	t := s.tasks[i]
	return &t, nil
}

func (s taskStore) ListVisible(_ context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, t := range s.tasks {
		if _, ok := s.members[[2]uuid.UUID{t.ProjectID, userID}]; !ok {
			continue
		}
		if projectID != nil && t.ProjectID != *projectID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s taskStore) write(t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(t.ID)
	if i < 0 {
		return apperror.ErrNotFound
	}
	s.tasks[i] = *t
	return nil
}

// UpdateLocked releases the lock around mutate, which reads memberships.
func (s taskStore) UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(*model.Task) (*model.Task, error)) (*model.Task, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	return next, s.write(next)
}

func (s taskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return apperror.ErrNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

type commentStore struct{ *memory }

func (s commentStore) Create(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, *c)
	return nil
}

func (s commentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s commentStore) ListByTask(_ context.Context, taskID uuid.UUID, limit, offset int) ([]model.Comment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Comment
	for i := len(s.comments) - 1; i >= 0; i-- {
		if s.comments[i].TaskID == taskID {
			all = append(all, s.comments[i])
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s commentStore) UpdateText(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		if s.comments[i].ID == c.ID {
			s.comments[i] = *c
			return nil
		}
	}
	return apperror.ErrNotFound
}

func (s commentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return apperror.ErrNotFound
}

type activityStore struct{ *memory }

func (s activityStore) Append(_ context.Context, entry *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	entry.ID = int64(len(s.activities) + 1)
	s.activities = append(s.activities, *entry)
	return nil
}

func (s activityStore) ListByProject(_ context.Context, projectID uuid.UUID, limit, offset int) ([]model.Activity, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Activity
	for i := len(s.activities) - 1; i >= 0; i-- {
		if s.activities[i].ProjectID == projectID {
			all = append(all, s.activities[i])
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s activityStore) actions(projectID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, a := range s.activities {
		if a.ProjectID == projectID {
			out = append(out, a.Action)
		}
	}
	return out
}

var errStorageDown = errors.New("storage unavailable")
