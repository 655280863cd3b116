package repository

import (
	"context"
	"errors"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SupervisionPushRepository push history data access.
// There is deliberately no method that rewrites the work order association.
type SupervisionPushRepository interface {
	Create(ctx context.Context, push *domain.SupervisionPush) error
	FindByID(ctx context.Context, id uint64) (*domain.SupervisionPush, error)
	RecordOutcome(ctx context.Context, id uint64, status domain.PushStatus, result datatypes.JSON, pushTime time.Time) error
	List(ctx context.Context, f domain.PushHistoryFilter) ([]*domain.SupervisionPush, int64, error)
	CountWorkOrders(ctx context.Context, pushIDs []uint64) (map[uint64]int64, error)
}

type supervisionPushRepository struct {
	db *gorm.DB
}

// NewSupervisionPushRepository creates a new SupervisionPushRepository
func NewSupervisionPushRepository(db *gorm.DB) SupervisionPushRepository {
	return &supervisionPushRepository{db: db}
}

// Create inserts the push and its work order links without touching the orders
func (r *supervisionPushRepository) Create(ctx context.Context, push *domain.SupervisionPush) error {
	return r.db.WithContext(ctx).Omit("WorkOrders.*").Create(push).Error
}

func (r *supervisionPushRepository) FindByID(ctx context.Context, id uint64) (*domain.SupervisionPush, error) {
	var push domain.SupervisionPush
	err := r.db.WithContext(ctx).Preload("WorkOrders").Where("id = ?", id).First(&push).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &push, nil
}

func (r *supervisionPushRepository) RecordOutcome(ctx context.Context, id uint64, status domain.PushStatus, result datatypes.JSON, pushTime time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.SupervisionPush{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"push_status": status,
			"push_result": result,
			"push_time":   pushTime,
		}).Error
}

func (r *supervisionPushRepository) List(ctx context.Context, f domain.PushHistoryFilter) ([]*domain.SupervisionPush, int64, error) {
	var pushes []*domain.SupervisionPush
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SupervisionPush{})
	if f.PushStatus != "" {
		query = query.Where("push_status = ?", f.PushStatus)
	}
	if f.PushMethod != "" {
		query = query.Where("push_method = ?", f.PushMethod)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("title LIKE ? OR regulatory_unit LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := query.Order("id DESC").Offset(offset).Limit(f.Limit).Find(&pushes).Error; err != nil {
		return nil, 0, err
	}
	return pushes, total, nil
}

func (r *supervisionPushRepository) CountWorkOrders(ctx context.Context, pushIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(pushIDs))
	if len(pushIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PushID uint64
		Total  int64
	}
	err := r.db.WithContext(ctx).Table("supervision_push_workorders").
		Select("push_id, COUNT(*) AS total").
		Where("push_id IN ?", pushIDs).
		Group("push_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PushID] = row.Total
	}
	return counts, nil
}
