package repository

import (
	"context"
	"errors"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Get returns the caller's membership in a project, or nil, nil if there is none.
func (r *MembershipRepository) Get(ctx context.Context, projectID, userID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("get membership", err)
	}
	return &m, nil
}

// Add inserts a MEMBER. An existing membership yields apperror.ErrConflict.
func (r *MembershipRepository) Add(ctx context.Context, m *model.Membership) error {
	return translate("add member", r.db.WithContext(ctx).Create(m).Error)
}

// Remove deletes a MEMBER and, in the same transaction, unassigns every task
// of the project that was assigned to that user. It returns how many tasks
// were unassigned. The OWNER membership is never removed.
func (r *MembershipRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) (int64, error) {
	var unassigned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, model.RoleMember).
			Delete(&model.Membership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.ErrNotFound
		}

		result = tx.Model(&model.Task{}).
			Where("project_id = ? AND assigned_to = ?", projectID, userID).
			Update("assigned_to", nil)
		if result.Error != nil {
			return result.Error
		}
		unassigned = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate("remove member", err)
	}
	return unassigned, nil
}

// ListByProject returns the memberships of a project with their users, owner first.
func (r *MembershipRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Membership, error) {
	var members []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("role DESC, created_at").
		Find(&members).Error
	return members, translate("list members", err)
}
