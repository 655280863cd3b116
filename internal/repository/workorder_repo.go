package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxDailySequence largest 3-digit suffix of an order number
const MaxDailySequence = 999

// WorkOrderRepository work order data access
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	FindByID(ctx context.Context, id uint64) (*domain.WorkOrder, error)
	FindByNo(ctx context.Context, no string) (*domain.WorkOrder, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]*domain.WorkOrder, error)
	List(ctx context.Context, f domain.WorkOrderFilter) ([]*domain.WorkOrder, int64, error)
	ListSupervision(ctx context.Context, f domain.SupervisionFilter) ([]*domain.WorkOrder, int64, error)
	Update(ctx context.Context, id uint64, changes map[string]interface{}) error

	// MarkOverdue moves open orders whose deadline is before today to OVERDUE
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	// Supervise forces PENDING + is_supervised on the existing ids and returns them
	Supervise(ctx context.Context, ids []uint64) ([]uint64, error)
	// AppendSubmission stores the entry and applies its transition in one transaction.
	// guard runs against the locked row before anything is written.
	AppendSubmission(ctx context.Context, sub *domain.WorkOrderSubmission, guard func(*domain.WorkOrder) error) (*domain.WorkOrder, error)
	ListSubmissions(ctx context.Context, workOrderID uint64) ([]*domain.WorkOrderSubmission, error)
	// ReserveSequence atomically reserves the next suffix for prefix+day
	ReserveSequence(ctx context.Context, prefix, day string) (int, error)
}

type workOrderRepository struct {
	db *gorm.DB
}

// NewWorkOrderRepository creates a new WorkOrderRepository
func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Merchant").
		Preload("Inspector").
		Preload("ResponsiblePerson").
		Preload("TransferPerson")
}

func (r *workOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(wo).Error
}

func (r *workOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&wo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrWorkOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) FindByNo(ctx context.Context, no string) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.withRelations(r.db.WithContext(ctx)).Where("workorder_no = ?", no).First(&wo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrWorkOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) FindByIDs(ctx context.Context, ids []uint64) ([]*domain.WorkOrder, error) {
	var orders []*domain.WorkOrder
	if len(ids) == 0 {
		return orders, nil
	}
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *workOrderRepository) List(ctx context.Context, f domain.WorkOrderFilter) ([]*domain.WorkOrder, int64, error) {
	var orders []*domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{})
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.HazardLevel != "" {
		query = query.Where("hazard_level = ?", f.HazardLevel)
	}
	if f.Deadline != nil {
		query = query.Where("deadline = ?", *f.Deadline)
	}
	if f.TaskID != nil {
		query = query.Where("task_id = ?", *f.TaskID)
	}
	if f.MerchantID != nil {
		query = query.Where("merchant_id = ?", *f.MerchantID)
	}
	if f.InspectorID != nil {
		query = query.Where("inspector_id = ?", *f.InspectorID)
	}
	if f.IsTransferred != nil {
		query = query.Where("is_transferred = ?", *f.IsTransferred)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("workorder_no LIKE ? OR merchant_id IN (?)", like,
			r.db.Model(&domain.Merchant{}).Select("id").Where("name LIKE ?", like))
	}
	if f.ReportTimeAfter != nil {
		query = query.Where("report_time >= ?", *f.ReportTimeAfter)
	}
	if f.ReportTimeBefore != nil {
		query = query.Where("report_time <= ?", *f.ReportTimeBefore)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	err := r.withRelations(query).Order("id DESC").Offset(offset).Limit(f.Limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *workOrderRepository) ListSupervision(ctx context.Context, f domain.SupervisionFilter) ([]*domain.WorkOrder, int64, error) {
	var orders []*domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("status <> ?", domain.StatusCompleted).
		Where("status = ? OR is_supervised = ?", domain.StatusOverdue, true)

	if f.DeadlineOnOrBefore != nil {
		query = query.Where("deadline <= ?", *f.DeadlineOnOrBefore)
	}
	if f.HazardLevel != "" {
		query = query.Where("hazard_level = ?", f.HazardLevel)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	err := r.withRelations(query).
		Order("deadline DESC").Order("id DESC").
		Offset(offset).Limit(f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *workOrderRepository) Update(ctx context.Context, id uint64, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("id = ?", id).Updates(changes).Error
}

func (r *workOrderRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("status IN ?", domain.OpenStatuses()).
		Where("deadline IS NOT NULL AND deadline < ?", today).
		Update("status", domain.StatusOverdue)
	return result.RowsAffected, result.Error
}

func (r *workOrderRepository) Supervise(ctx context.Context, ids []uint64) ([]uint64, error) {
	var matched []uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.WorkOrder{}).Where("id IN ?", ids).Pluck("id", &matched).Error; err != nil {
			return err
		}
		if len(matched) == 0 {
			return nil
		}
		return tx.Model(&domain.WorkOrder{}).Where("id IN ?", matched).Updates(map[string]interface{}{
			"status":        domain.StatusPending,
			"is_supervised": true,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (r *workOrderRepository) AppendSubmission(ctx context.Context, sub *domain.WorkOrderSubmission, guard func(*domain.WorkOrder) error) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", sub.WorkOrderID).First(&wo).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrWorkOrderNotFound
		}
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&wo); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		changes := wo.ApplySubmission(sub)
		return tx.Model(&domain.WorkOrder{}).Where("id = ?", wo.ID).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) ListSubmissions(ctx context.Context, workOrderID uint64) ([]*domain.WorkOrderSubmission, error) {
	var subs []*domain.WorkOrderSubmission
	err := r.db.WithContext(ctx).
		Preload("Submitter").
		Where("workorder_id = ?", workOrderID).
		Order("submit_time DESC").Order("id DESC").
		Find(&subs).Error
	return subs, err
}

func (r *workOrderRepository) ReserveSequence(ctx context.Context, prefix, day string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// numbers issued before the counter row existed still count
		start, err := r.maxIssuedSequence(tx, prefix+day)
		if err != nil {
			return err
		}

		seq := domain.WorkOrderSequence{SeqDate: day, LastValue: start + 1}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seq_date"}},
			// must be table-qualified: EXCLUDED.last_value is also in scope on Postgres
			DoUpdates: clause.Assignments(map[string]interface{}{"last_value": gorm.Expr("workorder_sequences.last_value + 1")}),
		}).Create(&seq).Error
		if err != nil {
			return fmt.Errorf("reserve sequence: %w", err)
		}

		if err := tx.Where("seq_date = ?", day).First(&seq).Error; err != nil {
			return err
		}
		if seq.LastValue > MaxDailySequence {
			return common.ErrSequenceExhausted
		}
		next = seq.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *workOrderRepository) maxIssuedSequence(tx *gorm.DB, numberPrefix string) (int, error) {
	var nos []string
	err := tx.Model(&domain.WorkOrder{}).
		Where("workorder_no LIKE ?", numberPrefix+"%").
		Order("workorder_no DESC").
		Limit(1).
		Pluck("workorder_no", &nos).Error
	if err != nil {
		return 0, err
	}
	if len(nos) == 0 || len(nos[0]) < 3 {
		return 0, nil
	}
	n, err := strconv.Atoi(nos[0][len(nos[0])-3:])
	if err != nil {
		return 0, nil
	}
	return n, nil
}
