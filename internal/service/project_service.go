package service

import (
	"context"
	"strings"

	"taskmaster/internal/activity"
	"taskmaster/internal/apperror"
	"taskmaster/internal/filter"
	"taskmaster/internal/model"
	"taskmaster/internal/permission"

	"github.com/google/uuid"
)

type ProjectService struct {
	guard
	projects   ProjectStore
	users      UserStore
	recorder   *activity.Recorder
	pagination filter.Pagination
}

func NewProjectService(
	projects ProjectStore,
	members MembershipStore,
	users UserStore,
	recorder *activity.Recorder,
	pagination filter.Pagination,
) *ProjectService {
	return &ProjectService{
		guard:      guard{members: members},
		projects:   projects,
		users:      users,
		recorder:   recorder,
		pagination: pagination,
	}
}

type ProjectInput struct {
	Name        string
	Description string
}

// Create makes caller the owner of a new project.
func (s *ProjectService) Create(ctx context.Context, caller uuid.UUID, in ProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name", "must not be empty")
	}
	project := &model.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: in.Description,
		OwnerID:     caller,
	}
	if err := s.projects.CreateWithOwner(ctx, project); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, nil, activity.ProjectCreated, nil, activity.ProjectSnapshot(project))
	return project, nil
}

// List returns the projects caller belongs to, newest first, filtered and paged.
func (s *ProjectService) List(ctx context.Context, caller uuid.UUID, spec filter.ProjectSpec, page filter.PageRequest) (filter.Page[model.Project], error) {
	projects, err := s.projects.ListForMember(ctx, caller)
	if err != nil {
		return filter.Page[model.Project]{}, err
	}
	return filter.Paginate(filter.EvaluateProjects(projects, spec), page, s.pagination), nil
}

func (s *ProjectService) Get(ctx context.Context, caller, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.ViewProject, permission.Target{}); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, caller, projectID uuid.UUID, in ProjectInput) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.EditProject, permission.Target{}); err != nil {
		return nil, err
	}

	before := activity.ProjectSnapshot(project)
	updated := *project
	if name := strings.TrimSpace(in.Name); name != "" {
		updated.Name = name
	}
	updated.Description = in.Description
	if err := s.projects.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, nil, activity.ProjectUpdated, before, activity.ProjectSnapshot(&updated))
	return &updated, nil
}

// Delete removes the project with everything it owns. No activity is kept
// because the project's log goes with it.
func (s *ProjectService) Delete(ctx context.Context, caller, projectID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, project, permission.DeleteProject, permission.Target{}); err != nil {
		return err
	}
	return s.projects.Delete(ctx, project.ID)
}

func (s *ProjectService) Members(ctx context.Context, caller, projectID uuid.UUID) ([]model.Membership, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.ViewProject, permission.Target{}); err != nil {
		return nil, err
	}
	return s.members.ListByProject(ctx, project.ID)
}

func (s *ProjectService) AddMember(ctx context.Context, caller, projectID, userID uuid.UUID) (*model.Membership, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.AddMember, permission.Target{}); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	membership := &model.Membership{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      model.RoleMember,
	}
	if err := s.members.Add(ctx, membership); err != nil {
		return nil, err
	}
	membership.User = *user

	s.recorder.Record(ctx, project.ID, caller, nil, activity.MemberAdded, nil, activity.MemberSnapshot(membership))
	return membership, nil
}

// RemoveMember revokes a membership; the user's tasks in the project become unassigned.
func (s *ProjectService) RemoveMember(ctx context.Context, caller, projectID, userID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, project, permission.RemoveMember, permission.Target{}); err != nil {
		return err
	}
	if userID == project.OwnerID {
		return apperror.Invalid("user_id", "the project owner cannot be removed")
	}

	membership, err := s.members.Get(ctx, project.ID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.ErrNotFound
	}

	unassigned, err := s.members.Remove(ctx, project.ID, userID)
	if err != nil {
		return err
	}

	after := activity.Snapshot{"unassigned_tasks": unassigned}
	s.recorder.Record(ctx, project.ID, caller, nil, activity.MemberRemoved, activity.MemberSnapshot(membership), after)
	return nil
}

// Activity returns one page of the project's log, newest first.
func (s *ProjectService) Activity(ctx context.Context, caller, projectID uuid.UUID, page filter.PageRequest) (filter.Page[model.Activity], error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return filter.Page[model.Activity]{}, err
	}
	if err := s.authorize(ctx, caller, project, permission.ViewActivity, permission.Target{}); err != nil {
		return filter.Page[model.Activity]{}, err
	}
	return s.recorder.List(ctx, project.ID, page)
}
