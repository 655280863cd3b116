package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/citysafe/inspection-backend/pkg/logger"
)

// DefaultNumberPrefix prefix of generated order numbers
const DefaultNumberPrefix = "WO"

// WorkOrderService work order lifecycle
type WorkOrderService struct {
	repo      repository.WorkOrderRepository
	tasks     repository.TaskRepository
	merchants repository.MerchantRepository
	users     repository.UserRepository
	sweeper   *OverdueSweeper
	notifier  Notifier
	clock     Clock
	prefix    string
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(
	repo repository.WorkOrderRepository,
	tasks repository.TaskRepository,
	merchants repository.MerchantRepository,
	users repository.UserRepository,
	sweeper *OverdueSweeper,
	notifier Notifier,
	clock Clock,
	prefix string,
) *WorkOrderService {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &WorkOrderService{
		repo:      repo,
		tasks:     tasks,
		merchants: merchants,
		users:     users,
		sweeper:   sweeper,
		notifier:  notifier,
		clock:     clock,
		prefix:    prefix,
	}
}

// Location timezone of business dates
func (s *WorkOrderService) Location() *time.Location {
	return s.clock.Location
}

func (s *WorkOrderService) view(wo *domain.WorkOrder) domain.WorkOrderView {
	return domain.NewWorkOrderView(wo, s.clock.Now(), s.clock.Location)
}

func (s *WorkOrderService) views(orders []*domain.WorkOrder) []domain.WorkOrderView {
	out := make([]domain.WorkOrderView, len(orders))
	for i, wo := range orders {
		out[i] = s.view(wo)
	}
	return out
}

// Create validates the request, reserves an order number and stores the order as PENDING
func (s *WorkOrderService) Create(ctx context.Context, actorID uint64, req *domain.CreateWorkOrderRequest) (*domain.WorkOrderView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Deadline == "" {
		return nil, common.ErrDeadlineRequired
	}
	deadline, err := domain.ParseDate(req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	wo := &domain.WorkOrder{
		MerchantID:            req.MerchantID,
		TaskID:                req.TaskID,
		CheckCategory:         domain.CheckCategory(req.CheckCategory),
		CheckItem:             req.CheckItem,
		InspectorID:           req.InspectorID,
		ResponsiblePersonID:   req.ResponsiblePersonID,
		HazardLevel:           domain.HazardLevel(req.HazardLevel),
		ProblemDescription:    req.ProblemDescription,
		RectificationCategory: domain.RectificationCategory(req.RectificationCategory),
		ReportTime:            s.clock.Now(),
		Deadline:              &deadline,
		Status:                domain.StatusPending,
		Remark:                req.Remark,
		CreatorID:             &actorID,
	}
	if err := s.inherit(ctx, wo); err != nil {
		return nil, err
	}

	day := s.clock.Now().In(s.clock.Location).Format("20060102")
	seq, err := s.repo.ReserveSequence(ctx, s.prefix, day)
	if err != nil {
		return nil, err
	}
	wo.WorkOrderNo = fmt.Sprintf("%s%s%03d", s.prefix, day, seq)

	if err := s.repo.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("create work order: %w", err)
	}

	logger.GetLogger().Info().
		Str("workorder_no", wo.WorkOrderNo).
		Uint64("actor_id", actorID).
		Msg("work order created")

	created, err := s.repo.FindByID(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	v := s.view(created)
	return &v, nil
}

// inherit fills inspector from the task manager and responsible person from the merchant
func (s *WorkOrderService) inherit(ctx context.Context, wo *domain.WorkOrder) error {
	if wo.TaskID != nil {
		task, err := s.tasks.FindByID(ctx, *wo.TaskID)
		if err != nil {
			return err
		}
		if wo.InspectorID == nil {
			wo.InspectorID = task.ManagerID
		}
	}
	if wo.MerchantID != nil {
		merchant, err := s.merchants.FindByID(ctx, *wo.MerchantID)
		if err != nil {
			return err
		}
		if wo.ResponsiblePersonID == nil {
			wo.ResponsiblePersonID = merchant.ResponsiblePersonID
		}
	}
	for _, id := range []*uint64{wo.InspectorID, wo.ResponsiblePersonID} {
		if id == nil {
			continue
		}
		if _, err := s.users.FindByID(ctx, *id); err != nil {
			return err
		}
	}
	return nil
}

// Get returns one order after the deadline check
func (s *WorkOrderService) Get(ctx context.Context, id uint64) (*domain.WorkOrderView, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	wo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(wo)
	return &v, nil
}

// GetByNo returns one order by its number after the deadline check
func (s *WorkOrderService) GetByNo(ctx context.Context, no string) (*domain.WorkOrderView, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	wo, err := s.repo.FindByNo(ctx, no)
	if err != nil {
		return nil, err
	}
	v := s.view(wo)
	return &v, nil
}

// List returns a page of orders after the deadline check
func (s *WorkOrderService) List(ctx context.Context, f domain.WorkOrderFilter) ([]domain.WorkOrderView, int64, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, 0, err
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	orders, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return s.views(orders), total, nil
}

// ListTransferred returns transferred orders
func (s *WorkOrderService) ListTransferred(ctx context.Context, f domain.WorkOrderFilter) ([]domain.WorkOrderView, int64, error) {
	transferred := true
	f.IsTransferred = &transferred
	return s.List(ctx, f)
}

// Update changes descriptive fields only
func (s *WorkOrderService) Update(ctx context.Context, id uint64, req *domain.UpdateWorkOrderRequest) (*domain.WorkOrderView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.MerchantID != nil {
		if _, err := s.merchants.FindByID(ctx, *req.MerchantID); err != nil {
			return nil, err
		}
		changes["merchant_id"] = *req.MerchantID
	}
	if req.InspectorID != nil {
		if _, err := s.users.FindByID(ctx, *req.InspectorID); err != nil {
			return nil, err
		}
		changes["inspector_id"] = *req.InspectorID
	}
	if req.ResponsiblePersonID != nil {
		if _, err := s.users.FindByID(ctx, *req.ResponsiblePersonID); err != nil {
			return nil, err
		}
		changes["responsible_person_id"] = *req.ResponsiblePersonID
	}
	if req.CheckCategory != nil {
		changes["check_category"] = *req.CheckCategory
	}
	if req.CheckItem != nil {
		changes["check_item"] = *req.CheckItem
	}
	if req.HazardLevel != nil {
		changes["hazard_level"] = *req.HazardLevel
	}
	if req.ProblemDescription != nil {
		changes["problem_description"] = *req.ProblemDescription
	}
	if req.RectificationCategory != nil {
		changes["rectification_category"] = *req.RectificationCategory
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			return nil, common.ErrDeadlineRequired
		}
		d, err := domain.ParseDate(*req.Deadline)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
		changes["deadline"] = d
	}
	if req.Remark != nil {
		changes["remark"] = *req.Remark
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("update work order: %w", err)
	}
	return s.Get(ctx, id)
}

// Complete records a qualified initial submission; an already completed order is rejected
func (s *WorkOrderService) Complete(ctx context.Context, actorID, id uint64, remark string) (*domain.WorkOrderView, error) {
	sub := &domain.WorkOrderSubmission{
		WorkOrderID: id,
		SubmitTime:  s.clock.Now(),
		IsQualified: true,
		Remark:      remark,
		SubmitterID: &actorID,
	}
	_, err := s.repo.AppendSubmission(ctx, sub, func(wo *domain.WorkOrder) error {
		if wo.Status == domain.StatusCompleted {
			return common.ErrAlreadyCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Submit appends a progress entry and applies its transition
func (s *WorkOrderService) Submit(ctx context.Context, actorID, id uint64, req *domain.SubmitRequest) (*domain.WorkOrderView, error) {
	sub := &domain.WorkOrderSubmission{
		WorkOrderID: id,
		SubmitTime:  s.clock.Now(),
		IsRecheck:   bool(req.IsRecheck),
		IsQualified: bool(req.IsQualified),
		Remark:      req.Remark,
		SubmitterID: &actorID,
	}
	if _, err := s.repo.AppendSubmission(ctx, sub, nil); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Supervise puts one order under supervision and notifies its parties
func (s *WorkOrderService) Supervise(ctx context.Context, id uint64) (*domain.WorkOrderView, error) {
	matched, err := s.repo.Supervise(ctx, []uint64{id})
	if err != nil {
		return nil, fmt.Errorf("supervise: %w", err)
	}
	if len(matched) == 0 {
		return nil, common.ErrWorkOrderNotFound
	}
	escalations.Inc()

	wo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	notifyParties(ctx, s.notifier, wo, s.clock)
	v := s.view(wo)
	return &v, nil
}

// BatchSupervise supervises every existing id and returns how many matched.
// Unknown ids are skipped.
func (s *WorkOrderService) BatchSupervise(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, common.ErrEmptyIDs
	}
	matched, err := s.repo.Supervise(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("batch supervise: %w", err)
	}
	if len(matched) == 0 {
		return 0, nil
	}
	escalations.Add(float64(len(matched)))

	orders, err := s.repo.FindByIDs(ctx, matched)
	if err != nil {
		// status already committed
		logger.GetLogger().Error().Err(err).Msg("load supervised orders for notification")
		return len(matched), nil
	}
	for _, wo := range orders {
		notifyParties(ctx, s.notifier, wo, s.clock)
	}
	return len(matched), nil
}

// Transfer hands the order to another user and notifies them
func (s *WorkOrderService) Transfer(ctx context.Context, id uint64, req *domain.TransferRequest) (*domain.WorkOrderView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, req.TransferPersonID); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrTransferPersonNotFound
		}
		return nil, err
	}

	err := s.repo.Update(ctx, id, map[string]interface{}{
		"is_transferred":     true,
		"transfer_person_id": req.TransferPersonID,
		"transfer_remark":    req.TransferRemark,
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	wo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	title, content := transferNotice(wo)
	if err := s.notifier.Notify(ctx, wo.TransferPersonID, title, content); err != nil {
		notificationsSent.WithLabelValues("failed").Inc()
		logger.GetLogger().Warn().Err(err).Str("workorder_no", wo.WorkOrderNo).Msg("transfer notice failed")
	} else {
		notificationsSent.WithLabelValues("delivered").Inc()
	}

	v := s.view(wo)
	return &v, nil
}

// ListSubmissions returns the order's log, newest first
func (s *WorkOrderService) ListSubmissions(ctx context.Context, id uint64) ([]domain.SubmissionItem, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.submissionItems(ctx, id)
}

// ListSubmissionsByNo returns the log of the order with the given number
func (s *WorkOrderService) ListSubmissionsByNo(ctx context.Context, no string) ([]domain.SubmissionItem, error) {
	wo, err := s.repo.FindByNo(ctx, no)
	if err != nil {
		return nil, err
	}
	return s.submissionItems(ctx, wo.ID)
}

func (s *WorkOrderService) submissionItems(ctx context.Context, id uint64) ([]domain.SubmissionItem, error) {
	subs, err := s.repo.ListSubmissions(ctx, id)
	if err != nil {
		return nil, err
	}
	items := make([]domain.SubmissionItem, len(subs))
	for i, sub := range subs {
		items[i] = sub.ToItem()
	}
	return items, nil
}
