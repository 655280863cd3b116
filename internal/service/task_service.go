package service

import (
	"context"
	"fmt"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/repository"
)

// TaskService inspection tasks
type TaskService struct {
	repo      repository.TaskRepository
	merchants repository.MerchantRepository
	users     repository.UserRepository
	orders    *WorkOrderService
}

// NewTaskService creates a new TaskService
func NewTaskService(
	repo repository.TaskRepository,
	merchants repository.MerchantRepository,
	users repository.UserRepository,
	orders *WorkOrderService,
) *TaskService {
	return &TaskService{repo: repo, merchants: merchants, users: users, orders: orders}
}

// Create validates the window, cycle, manager and merchants, then stores the task
func (s *TaskService) Create(ctx context.Context, actorID uint64, req *domain.CreateTaskRequest) (*domain.TaskView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, common.ErrInvalidTimeRange
	}
	cycle, err := domain.ParseTaskCycle(req.Cycle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if req.ManagerID != nil {
		if _, err := s.users.FindByID(ctx, *req.ManagerID); err != nil {
			return nil, err
		}
	}

	ids := dedupIDs(req.MerchantIDs)
	merchants, err := s.merchants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(merchants) != len(ids) {
		return nil, common.ErrMerchantNotFound
	}

	task := &domain.Task{
		Name:       req.Name,
		ManagerID:  req.ManagerID,
		Cycle:      cycle,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Merchants:  merchants,
		CheckItems: req.CheckItems,
		Status:     domain.TaskPending,
		Remark:     req.Remark,
		CreatorID:  &actorID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.Get(ctx, task.ID)
}

// Get returns one task with its manager and merchants
func (s *TaskService) Get(ctx context.Context, id uint64) (*domain.TaskView, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewTaskView(task)
	return &v, nil
}

// List returns a page of tasks
func (s *TaskService) List(ctx context.Context, f domain.TaskFilter) ([]domain.TaskView, int64, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	tasks, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	views := make([]domain.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = domain.NewTaskView(t)
	}
	return views, total, nil
}

// ListWorkOrders returns the orders raised under the task
func (s *TaskService) ListWorkOrders(ctx context.Context, id uint64, page, limit int) ([]domain.WorkOrderView, int64, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.orders.List(ctx, domain.WorkOrderFilter{TaskID: &id, Page: page, Limit: limit})
}

func dedupIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
