// Package filter narrows and orders task and project collections and pages
// the result. Evaluation works on already loaded rows and never touches the
// datastore.
package filter

import (
	"sort"
	"strings"
	"time"

	"taskmaster/internal/model"

	"github.com/google/uuid"
)

// OrderField names a sortable task attribute.
type OrderField string

const (
	OrderNone      OrderField = ""
	OrderDueDate   OrderField = "due_date"
	OrderPriority  OrderField = "priority"
	OrderCreatedAt OrderField = "created_at"
)

type Ordering struct {
	Field      OrderField
	Descending bool
}

// TimeRange is an inclusive range; a nil bound is open.
type TimeRange struct {
	After  *time.Time
	Before *time.Time
}

func (r TimeRange) empty() bool {
	return r.After == nil && r.Before == nil
}

func (r TimeRange) contains(t time.Time) bool {
	if r.After != nil && t.Before(*r.After) {
		return false
	}
	if r.Before != nil && t.After(*r.Before) {
		return false
	}
	return true
}

// TaskSpec is the normalized set of predicates and ordering for a task query.
// Values inside one field are OR'ed, fields are AND'ed. Zero values mean "no predicate".
type TaskSpec struct {
	Statuses   []model.TaskStatus
	Priorities []model.Priority
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	CreatedBy  *uuid.UUID
	Due        TimeRange
	Created    TimeRange
	Search     string
	HasDueDate *bool
	IsAssigned *bool
	Ordering   Ordering
}

// Matches reports whether task satisfies every predicate of s.
func (s TaskSpec) Matches(task *model.Task) bool {
	if len(s.Statuses) > 0 && !containsStatus(s.Statuses, task.Status) {
		return false
	}
	if len(s.Priorities) > 0 && !containsPriority(s.Priorities, task.Priority) {
		return false
	}
	if s.ProjectID != nil && task.ProjectID != *s.ProjectID {
		return false
	}
	if s.AssigneeID != nil && (task.AssignedTo == nil || *task.AssignedTo != *s.AssigneeID) {
		return false
	}
	if s.CreatedBy != nil && task.CreatedBy != *s.CreatedBy {
		return false
	}
	if !s.Due.empty() && (task.DueDate == nil || !s.Due.contains(*task.DueDate)) {
		return false
	}
	if !s.Created.empty() && !s.Created.contains(task.CreatedAt) {
		return false
	}
	if s.HasDueDate != nil && (task.DueDate != nil) != *s.HasDueDate {
		return false
	}
	if s.IsAssigned != nil && (task.AssignedTo != nil) != *s.IsAssigned {
		return false
	}
	if s.Search != "" && !matchesText(s.Search, task.Title, task.Description) {
		return false
	}
	return true
}

// Evaluate returns the tasks matching spec, ordered by spec.Ordering. Input
// order is preserved for ties, so callers pass tasks in creation order.
func Evaluate(tasks []model.Task, spec TaskSpec) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		if spec.Matches(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	if spec.Ordering.Field == OrderNone {
		return out
	}

	cmp := comparator(spec.Ordering.Field)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		// Tasks without a due date go last in both directions.
		if spec.Ordering.Field == OrderDueDate && (a.DueDate == nil || b.DueDate == nil) {
			return a.DueDate != nil && b.DueDate == nil
		}
		c := cmp(a, b)
		if spec.Ordering.Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(field OrderField) func(a, b *model.Task) int {
	switch field {
	case OrderPriority:
		return func(a, b *model.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case OrderDueDate:
		return func(a, b *model.Task) int {
			return a.DueDate.Compare(*b.DueDate)
		}
	default:
		return func(a, b *model.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

func containsStatus(set []model.TaskStatus, s model.TaskStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []model.Priority, p model.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func matchesText(needle string, fields ...string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ProjectSpec filters the project list.
type ProjectSpec struct {
	Search    string
	Created   TimeRange
	CreatedBy *uuid.UUID
}

// EvaluateProjects returns the projects matching spec in input order.
func EvaluateProjects(projects []model.Project, spec ProjectSpec) []model.Project {
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if spec.Search != "" && !matchesText(spec.Search, p.Name, p.Description) {
			continue
		}
		if !spec.Created.empty() && !spec.Created.contains(p.CreatedAt) {
			continue
		}
		if spec.CreatedBy != nil && p.OwnerID != *spec.CreatedBy {
			continue
		}
		out = append(out, p)
	}
	return out
}
