package service

import (
	"context"
	"strings"
	"time"

	"taskmaster/internal/activity"
	"taskmaster/internal/apperror"
	"taskmaster/internal/filter"
	"taskmaster/internal/model"
	"taskmaster/internal/permission"
	"taskmaster/internal/taskstate"

	"github.com/google/uuid"
)

type TaskService struct {
	guard
	projects   ProjectStore
	tasks      TaskStore
	recorder   *activity.Recorder
	pagination filter.Pagination
}

func NewTaskService(
	projects ProjectStore,
	members MembershipStore,
	tasks TaskStore,
	recorder *activity.Recorder,
	pagination filter.Pagination,
) *TaskService {
	return &TaskService{
		guard:      guard{members: members},
		projects:   projects,
		tasks:      tasks,
		recorder:   recorder,
		pagination: pagination,
	}
}

type CreateTaskInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	Priority    model.Priority
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
}

// UpdateTaskInput carries the editable fields; nil leaves a field unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *model.Priority
	DueDate      *time.Time
	ClearDueDate bool
}

func (s *TaskService) Create(ctx context.Context, caller uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.Invalid("title", "must not be empty")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.Invalid("priority", "unknown priority %q", priority)
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.CreateTask, permission.Target{}); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		Title:       title,
		Description: in.Description,
		Status:      taskstate.Initial,
		Priority:    priority,
		CreatedBy:   caller,
		DueDate:     in.DueDate,
	}

	if in.AssignedTo != nil {
		task, err = s.assign(ctx, caller, project, task, in.AssignedTo)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &task.ID, activity.TaskCreated, nil, activity.TaskSnapshot(task))
	return task, nil
}

// assign authorizes and validates an assignment against the given task state.
func (s *TaskService) assign(ctx context.Context, caller uuid.UUID, project *model.Project, task *model.Task, assignee *uuid.UUID) (*model.Task, error) {
	target := permission.Target{Assignee: assignee, CurrentAssignee: task.AssignedTo}
	if err := s.authorize(ctx, caller, project, permission.AssignTask, target); err != nil {
		return nil, err
	}
	isMember := false
	if assignee != nil {
		var err error
		if isMember, err = s.isMember(ctx, project.ID, *assignee); err != nil {
			return nil, err
		}
	}
	return taskstate.Assign(task, assignee, isMember)
}

// List returns the tasks visible to caller that match spec, ordered and paged.
// Filtering on a project the caller does not belong to is denied.
func (s *TaskService) List(ctx context.Context, caller uuid.UUID, spec filter.TaskSpec, page filter.PageRequest) (filter.Page[model.Task], error) {
	if spec.ProjectID != nil {
		project, err := s.projects.GetByID(ctx, *spec.ProjectID)
		if err != nil {
			return filter.Page[model.Task]{}, err
		}
		if err := s.authorize(ctx, caller, project, permission.ViewTask, permission.Target{}); err != nil {
			return filter.Page[model.Task]{}, err
		}
	}

	tasks, err := s.tasks.ListVisible(ctx, caller, spec.ProjectID)
	if err != nil {
		return filter.Page[model.Task]{}, err
	}
	return filter.Paginate(filter.Evaluate(tasks, spec), page, s.pagination), nil
}

// load fetches a task with its project and checks action against it.
func (s *TaskService) load(ctx context.Context, caller, taskID uuid.UUID, action permission.Action) (*model.Task, *model.Project, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize(ctx, caller, project, action, permission.Target{}); err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) Get(ctx context.Context, caller, taskID uuid.UUID) (*model.Task, error) {
	task, _, err := s.load(ctx, caller, taskID, permission.ViewTask)
	return task, err
}

// Update applies the edited fields to the task as locked at commit time, so
// status and assignee written concurrently are kept.
func (s *TaskService) Update(ctx context.Context, caller, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, project, err := s.load(ctx, caller, taskID, permission.EditTask)
	if err != nil {
		return nil, err
	}

	var title string
	if in.Title != nil {
		if title = strings.TrimSpace(*in.Title); title == "" {
			return nil, apperror.Invalid("title", "must not be empty")
		}
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperror.Invalid("priority", "unknown priority %q", *in.Priority)
	}

	var before *model.Task
	updated, err := s.tasks.UpdateLocked(ctx, task.ID, func(current *model.Task) (*model.Task, error) {
		before = current
		next := *current
		if in.Title != nil {
			next.Title = title
		}
		if in.Description != nil {
			next.Description = *in.Description
		}
		if in.Priority != nil {
			next.Priority = *in.Priority
		}
		if in.ClearDueDate {
			next.DueDate = nil
		} else if in.DueDate != nil {
			next.DueDate = in.DueDate
		}
		return &next, nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &task.ID, activity.TaskUpdated, activity.TaskSnapshot(before), activity.TaskSnapshot(updated))
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, caller, taskID uuid.UUID) error {
	task, project, err := s.load(ctx, caller, taskID, permission.DeleteTask)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.recorder.Record(ctx, project.ID, caller, &task.ID, activity.TaskDeleted, activity.TaskSnapshot(task), nil)
	return nil
}

// Assign sets or clears the assignee. The assignee must be a current member
// of the task's project.
func (s *TaskService) Assign(ctx context.Context, caller, taskID uuid.UUID, assignee *uuid.UUID) (*model.Task, error) {
	task, project, err := s.load(ctx, caller, taskID, permission.ViewTask)
	if err != nil {
		return nil, err
	}

	var before *model.Task
	updated, err := s.tasks.UpdateLocked(ctx, task.ID, func(current *model.Task) (*model.Task, error) {
		before = current
		return s.assign(ctx, caller, project, current, assignee)
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &task.ID, activity.TaskAssigned, activity.TaskSnapshot(before), activity.TaskSnapshot(updated))
	return updated, nil
}

// ChangeStatus moves the task along the workflow graph. The transition is
// checked against the row as locked at commit time, not as first read.
func (s *TaskService) ChangeStatus(ctx context.Context, caller, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	task, project, err := s.load(ctx, caller, taskID, permission.ChangeTaskStatus)
	if err != nil {
		return nil, err
	}

	var before *model.Task
	updated, err := s.tasks.UpdateLocked(ctx, task.ID, func(current *model.Task) (*model.Task, error) {
		before = current
		return taskstate.Transition(current, status)
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &task.ID, activity.TaskStatusChanged, activity.TaskSnapshot(before), activity.TaskSnapshot(updated))
	return updated, nil
}
