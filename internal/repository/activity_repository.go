package repository

import (
	"context"

	"taskmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository only ever inserts and reads; entries are immutable.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *model.Activity) error {
	return translate("append activity", r.db.WithContext(ctx).Omit("Actor").Create(entry).Error)
}

// ListByProject returns one page of a project's entries, newest first, ties
// broken by insertion sequence, and the total count.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]model.Activity, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Activity{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, 0, translate("count activity", err)
	}

	var entries []model.Activity
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, translate("list activity", err)
}
