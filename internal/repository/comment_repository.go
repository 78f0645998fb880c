package repository

import (
	"context"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return translate("create comment", r.db.WithContext(ctx).Omit("Author").Create(comment).Error)
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate("get comment", err)
	}
	return &comment, nil
}

// ListByTask returns one page of a task's comments, newest first, and the total count.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID, limit, offset int) ([]model.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		return nil, 0, translate("count comments", err)
	}

	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, total, translate("list comments", err)
}

// UpdateText changes the text only; author and task are immutable.
func (r *CommentRepository) UpdateText(ctx context.Context, comment *model.Comment) error {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{"text": comment.Text, "edited_at": comment.EditedAt})
	if result.Error != nil {
		return translate("update comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", id)
	if result.Error != nil {
		return translate("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
