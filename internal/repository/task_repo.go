package repository

import (
	"context"
	"errors"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/gorm"
)

// TaskRepository inspection task data access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint64) (*domain.Task, error)
	List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create inserts the task and its merchant links; merchant rows are not touched
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit("Manager", "Merchants.*").Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Merchants").
		Where("id = ?", id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, int64, error) {
	var tasks []*domain.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Task{})
	if f.Name != "" {
		query = query.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Cycle != "" {
		query = query.Where("cycle = ?", f.Cycle)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.MerchantID != nil {
		query = query.Where("id IN (?)",
			r.db.Table("task_merchants").Select("task_id").Where("merchant_id = ?", *f.MerchantID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	err := query.Preload("Manager").Preload("Merchants").
		Order("id DESC").Offset(offset).Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
