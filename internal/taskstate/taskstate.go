// Package taskstate holds the task workflow: the closed set of statuses, the
// legal transitions between them and the assignment rule.
package taskstate

import (
	"fmt"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
)

// Initial is the status of every newly created task.
const Initial = model.StatusTodo

var transitions = map[model.TaskStatus][]model.TaskStatus{
	model.StatusTodo:       {model.StatusInProgress, model.StatusBlocked},
	model.StatusInProgress: {model.StatusDone, model.StatusBlocked, model.StatusTodo},
	model.StatusBlocked:    {model.StatusTodo, model.StatusInProgress},
	model.StatusDone:       {model.StatusInProgress},
}

// CanTransition reports whether from -> to is an edge of the workflow graph.
// There are no self loops.
func CanTransition(from, to model.TaskStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the statuses reachable from status in one step.
func NextStates(status model.TaskStatus) []model.TaskStatus {
	next := transitions[status]
	out := make([]model.TaskStatus, len(next))
	copy(out, next)
	return out
}

// Transition returns a copy of task moved to requested. The original task is
// never modified; a rejected transition returns apperror.ErrInvalidTransition.
func Transition(task *model.Task, requested model.TaskStatus) (*model.Task, error) {
	if !requested.Valid() {
		return nil, apperror.Invalid("status", "unknown status %q", requested)
	}
	if !CanTransition(task.Status, requested) {
		return nil, fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidTransition, task.Status, requested)
	}
	next := *task
	next.Status = requested
	return &next, nil
}

// Assign returns a copy of task assigned to assignee. A nil assignee unassigns
// the task and always succeeds; otherwise isMember must report that the
// assignee currently belongs to the task's project.
func Assign(task *model.Task, assignee *uuid.UUID, isMember bool) (*model.Task, error) {
	next := *task
	if assignee == nil {
		next.AssignedTo = nil
		return &next, nil
	}
	if !isMember {
		return nil, apperror.ErrNotAMember
	}
	id := *assignee
	next.AssignedTo = &id
	return &next, nil
}
