package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/citysafe/inspection-backend/pkg/logger"
	"gorm.io/datatypes"
)

// SupervisionQuery supervision queue options as received from the client
type SupervisionQuery struct {
	// OverdueHours keeps orders whose deadline midnight is at least this many hours ago
	OverdueHours *int
	HazardLevel  domain.HazardLevel
	Status       *domain.WorkOrderStatus
	Page         int
	Limit        int
}

// SupervisionService supervision queue and batch pushes
type SupervisionService struct {
	orders   repository.WorkOrderRepository
	pushes   repository.SupervisionPushRepository
	sweeper  *OverdueSweeper
	notifier Notifier
	clock    Clock
}

// NewSupervisionService creates a new SupervisionService
func NewSupervisionService(
	orders repository.WorkOrderRepository,
	pushes repository.SupervisionPushRepository,
	sweeper *OverdueSweeper,
	notifier Notifier,
	clock Clock,
) *SupervisionService {
	return &SupervisionService{
		orders:   orders,
		pushes:   pushes,
		sweeper:  sweeper,
		notifier: notifier,
		clock:    clock,
	}
}

// Queue lists orders that are overdue or under supervision, excluding completed ones
func (s *SupervisionService) Queue(ctx context.Context, q SupervisionQuery) ([]domain.SupervisionItem, int64, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, 0, err
	}

	f := domain.SupervisionFilter{HazardLevel: q.HazardLevel, Status: q.Status}
	f.Page, f.Limit = normalizePage(q.Page, q.Limit)
	if q.OverdueHours != nil && *q.OverdueHours > 0 {
		cutoff := domain.DateOf(s.clock.Now().Add(-time.Duration(*q.OverdueHours)*time.Hour), s.clock.Location)
		f.DeadlineOnOrBefore = &cutoff
	}

	orders, total, err := s.orders.ListSupervision(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	items := make([]domain.SupervisionItem, len(orders))
	for i, wo := range orders {
		items[i] = domain.NewSupervisionItem(wo, now, s.clock.Location)
	}
	return items, total, nil
}

// BatchPush records a push for the selected orders and notifies their parties.
// Order status is not changed.
func (s *SupervisionService) BatchPush(ctx context.Context, actorID uint64, req *domain.BatchPushRequest) (*domain.PushOutcome, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if len(req.WorkOrderIDs) == 0 {
		return nil, common.ErrEmptyIDs
	}

	orders, err := s.orders.FindByIDs(ctx, req.WorkOrderIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, common.ErrWorkOrderNotFound
	}

	method := domain.PushMethod(req.PushMethod)
	if method == "" {
		method = domain.PushSystem
	}
	unit := req.RegulatoryUnit
	if unit == "" {
		unit = domain.DefaultRegulatoryUnit
	}

	now := s.clock.Now()
	linked := make([]domain.WorkOrder, len(orders))
	for i, wo := range orders {
		linked[i] = domain.WorkOrder{ID: wo.ID}
	}
	push := &domain.SupervisionPush{
		Title:          "督办通知-" + now.In(s.clock.Location).Format("20060102150405"),
		WorkOrders:     linked,
		RegulatoryUnit: unit,
		PushMethod:     method,
		PushStatus:     domain.PushPending,
		PushContent:    s.pushContent(orders, now),
		CreatorID:      &actorID,
	}
	if err := s.pushes.Create(ctx, push); err != nil {
		return nil, fmt.Errorf("create supervision push: %w", err)
	}

	detail := domain.PushResultDetail{Deliveries: []domain.PushDelivery{}}
	for _, wo := range orders {
		for _, d := range notifyParties(ctx, s.notifier, wo, s.clock) {
			detail.Total++
			if d.Delivered {
				detail.Delivered++
			} else {
				detail.Failed++
			}
			detail.Deliveries = append(detail.Deliveries, d)
		}
	}

	status := detail.Status()
	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}
	if err := s.pushes.RecordOutcome(ctx, push.ID, status, datatypes.JSON(raw), s.clock.Now()); err != nil {
		// deliveries already happened; the record stays pending
		logger.GetLogger().Error().Err(err).Uint64("push_id", push.ID).Msg("record push outcome")
	}

	logger.GetLogger().Info().
		Uint64("push_id", push.ID).
		Int("orders", len(orders)).
		Int("delivered", detail.Delivered).
		Int("failed", detail.Failed).
		Msg("supervision push sent")

	return &domain.PushOutcome{
		PushID:            push.ID,
		Count:             len(orders),
		NotificationCount: detail.Delivered,
		Status:            status,
	}, nil
}

func (s *SupervisionService) pushContent(orders []*domain.WorkOrder, now time.Time) string {
	var b strings.Builder
	b.WriteString("督办通知\n\n以下是严重逾期工单，请及时处理：\n\n")
	for _, wo := range orders {
		problem := wo.ProblemDescription
		if problem == "" {
			problem = "无"
		}
		fmt.Fprintf(&b, "工单号：%s，商户：%s，问题：%s，逾期：%d天\n",
			wo.WorkOrderNo, merchantName(wo), problem,
			domain.OverdueDays(wo.Deadline, now, s.clock.Location))
	}
	return b.String()
}

// History lists past pushes, newest first
func (s *SupervisionService) History(ctx context.Context, f domain.PushHistoryFilter) ([]domain.PushHistoryItem, int64, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	pushes, total, err := s.pushes.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint64, len(pushes))
	for i, p := range pushes {
		ids[i] = p.ID
	}
	counts, err := s.pushes.CountWorkOrders(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.PushHistoryItem, len(pushes))
	for i, p := range pushes {
		items[i] = domain.PushHistoryItem{
			SupervisionPush:   p,
			PushMethodDisplay: p.PushMethod.Label(),
			PushStatusDisplay: p.PushStatus.Label(),
			WorkOrderCount:    counts[p.ID],
		}
	}
	return items, total, nil
}
