package repository

import (
	"context"
	"reflect"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate("create task", r.db.WithContext(ctx).Create(task).Error)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, translate("get task", err)
	}
	return &task, nil
}

// ListVisible returns the tasks of every project userID belongs to, optionally
// restricted to one project, in creation order.
func (r *TaskRepository) ListVisible(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) ([]model.Task, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.project_id = tasks.project_id").
		Where("memberships.user_id = ?", userID)
	if projectID != nil {
		query = query.Where("tasks.project_id = ?", *projectID)
	}

	var tasks []model.Task
	err := query.Order("tasks.created_at, tasks.id").Find(&tasks).Error
	return tasks, translate("list tasks", err)
}

// taskColumns lists the mutable columns of a task.
func taskColumns(t *model.Task) map[string]any {
	return map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"assigned_to": t.AssignedTo,
		"due_date":    t.DueDate,
	}
}

// changedColumns returns the mutable columns whose value differs between the
// locked row and the mutated task.
func changedColumns(current, next *model.Task) map[string]any {
	before := taskColumns(current)
	changed := make(map[string]any)
	for column, value := range taskColumns(next) {
		if !reflect.DeepEqual(before[column], value) {
			changed[column] = value
		}
	}
	return changed
}

// UpdateLocked loads the task with a row lock, lets mutate derive the new
// state from the committed row and writes back only the columns mutate
// changed, in the same transaction. An error from mutate rolls back and is
// returned unchanged.
func (r *TaskRepository) UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(current *model.Task) (*model.Task, error)) (*model.Task, error) {
	var updated *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			return translate("lock task", err)
		}

		locked := current
		next, err := mutate(&current)
		if err != nil {
			return err
		}
		if changed := changedColumns(&locked, next); len(changed) > 0 {
			if err := tx.Model(&model.Task{}).Where("id = ?", locked.ID).Updates(changed).Error; err != nil {
				return translate("save task", err)
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return translate("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
