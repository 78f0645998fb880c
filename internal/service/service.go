// Package service runs each request through the authorize, mutate and record
// sequence. Handlers call it with an already authenticated caller id.
package service

import (
	"context"
	"time"

	"taskmaster/internal/model"
	"taskmaster/internal/permission"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type ProjectStore interface {
	CreateWithOwner(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListForMember(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MembershipStore interface {
	Get(ctx context.Context, projectID, userID uuid.UUID) (*model.Membership, error)
	Add(ctx context.Context, m *model.Membership) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) (int64, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Membership, error)
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListVisible(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]model.Task, error)
	UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(current *model.Task) (*model.Task, error)) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID, limit, offset int) ([]model.Comment, int64, error)
	UpdateText(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// guard loads the membership snapshot for a request and asks the permission engine.
type guard struct {
	members MembershipStore
}

func (g guard) authorize(ctx context.Context, caller uuid.UUID, project *model.Project, action permission.Action, target permission.Target) error {
	membership, err := g.members.Get(ctx, project.ID, caller)
	if err != nil {
		return err
	}
	target.ProjectOwnerID = project.OwnerID
	target.Role = permission.RoleOf(membership)

	return permission.Authorize(permission.Request{
		Caller: caller,
		Action: action,
		Target: target,
	}).Err()
}

func (g guard) isMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	m, err := g.members.Get(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}
