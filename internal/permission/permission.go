// Package permission decides whether a caller may perform an action on a
// project, task or comment. Decisions are pure functions of the membership
// snapshot passed in and are re-evaluated on every request.
package permission

import (
	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
)

type Action string

const (
	ViewProject      Action = "ViewProject"
	EditProject      Action = "EditProject"
	DeleteProject    Action = "DeleteProject"
	AddMember        Action = "AddMember"
	RemoveMember     Action = "RemoveMember"
	ViewActivity     Action = "ViewActivity"
	ViewTask         Action = "ViewTask"
	CreateTask       Action = "CreateTask"
	EditTask         Action = "EditTask"
	DeleteTask       Action = "DeleteTask"
	AssignTask       Action = "AssignTask"
	ChangeTaskStatus Action = "ChangeTaskStatus"
	ViewComment      Action = "ViewComment"
	CreateComment    Action = "CreateComment"
	EditComment      Action = "EditComment"
	DeleteComment    Action = "DeleteComment"
)

// Actions lists every action the engine knows about.
var Actions = []Action{
	ViewProject, EditProject, DeleteProject, AddMember, RemoveMember, ViewActivity,
	ViewTask, CreateTask, EditTask, DeleteTask, AssignTask, ChangeTaskStatus,
	ViewComment, CreateComment, EditComment, DeleteComment,
}

// Target is the membership snapshot and resource facts an action is checked against.
type Target struct {
	ProjectOwnerID uuid.UUID
	// Role is the caller's membership role, nil when the caller is not a member.
	Role *model.Role
	// CommentAuthorID is set for EditComment and DeleteComment.
	CommentAuthorID uuid.UUID
	// Assignee is the requested assignee for AssignTask, nil to unassign.
	Assignee *uuid.UUID
	// CurrentAssignee is the task's assignee before an AssignTask.
	CurrentAssignee *uuid.UUID
}

type Request struct {
	Caller uuid.UUID
	Action Action
	Target Target
}

type Decision struct {
	Allowed bool
	Reason  apperror.Reason
}

// Err returns nil for an allowed decision and an *apperror.AuthorizationDenied otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperror.Denied(d.Reason)
}

var (
	allow = Decision{Allowed: true}
)

func deny(reason apperror.Reason) Decision {
	return Decision{Reason: reason}
}

type rule struct {
	name   string
	match  func(Request) bool
	decide func(Request) Decision
}

var memberActions = map[Action]bool{
	ViewProject:      true,
	ViewActivity:     true,
	ViewTask:         true,
	ViewComment:      true,
	CreateTask:       true,
	CreateComment:    true,
	ChangeTaskStatus: true,
}

// rules is evaluated top to bottom; the first matching rule decides.
var rules = []rule{
	{
		name:   "owner",
		match:  func(r Request) bool { return isOwner(r) },
		decide: func(Request) Decision { return allow },
	},
	{
		name:   "non-member",
		match:  func(r Request) bool { return r.Target.Role == nil },
		decide: func(Request) Decision { return deny(apperror.ReasonNotAMember) },
	},
	{
		name:  "comment author",
		match: func(r Request) bool { return r.Action == EditComment || r.Action == DeleteComment },
		decide: func(r Request) Decision {
			if r.Target.CommentAuthorID == r.Caller {
				return allow
			}
			return deny(apperror.ReasonNotAuthor)
		},
	},
	{
		name:  "self assignment",
		match: func(r Request) bool { return r.Action == AssignTask },
		decide: func(r Request) Decision {
			if selfAssignment(r) {
				return allow
			}
			return deny(apperror.ReasonInsufficientRole)
		},
	},
	{
		name:   "member",
		match:  func(r Request) bool { return memberActions[r.Action] },
		decide: func(Request) Decision { return allow },
	},
	{
		name:   "default",
		match:  func(Request) bool { return true },
		decide: func(Request) Decision { return deny(apperror.ReasonInsufficientRole) },
	},
}

func isOwner(r Request) bool {
	if r.Target.ProjectOwnerID == r.Caller {
		return true
	}
	return r.Target.Role != nil && *r.Target.Role == model.RoleOwner
}

// A member may take a task or release a task that is theirs or nobody's.
func selfAssignment(r Request) bool {
	if r.Target.Assignee != nil {
		return *r.Target.Assignee == r.Caller
	}
	current := r.Target.CurrentAssignee
	return current == nil || *current == r.Caller
}

// Authorize evaluates the rule chain for r.
func Authorize(r Request) Decision {
	for _, rl := range rules {
		if rl.match(r) {
			return rl.decide(r)
		}
	}
	return deny(apperror.ReasonInsufficientRole)
}

// RoleOf is a helper for building a Target from an optional membership.
func RoleOf(m *model.Membership) *model.Role {
	if m == nil {
		return nil
	}
	role := m.Role
	return &role
}
