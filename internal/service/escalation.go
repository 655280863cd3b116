package service

import (
	"context"
	"fmt"

	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/pkg/logger"
)

const unknownMerchant = "未知"

func merchantName(wo *domain.WorkOrder) string {
	if wo.Merchant == nil || wo.Merchant.Name == "" {
		return unknownMerchant
	}
	return wo.Merchant.Name
}

// superviseNotice title and body sent to one party of a supervised order
func superviseNotice(wo *domain.WorkOrder, role domain.NotifyRole, overdueDays int) (string, string) {
	var action string
	switch role {
	case domain.RoleResponsiblePerson:
		action = "请关注整改情况"
	case domain.RoleTransferPerson:
		action = "请跟进处理"
	default:
		action = "请尽快处理"
	}
	content := fmt.Sprintf("工单\"%s\"已被督办，%s。\n商户：%s", wo.WorkOrderNo, action, merchantName(wo))
	if overdueDays > 0 {
		content += fmt.Sprintf("\n逾期：%d天", overdueDays)
	}
	return "督办通知：" + wo.WorkOrderNo, content
}

// transferNotice title and body sent to the new transfer person
func transferNotice(wo *domain.WorkOrder) (string, string) {
	content := fmt.Sprintf("工单\"%s\"已移交给您，请跟进处理。\n商户：%s", wo.WorkOrderNo, merchantName(wo))
	if wo.TransferRemark != "" {
		content += "\n备注：" + wo.TransferRemark
	}
	return "工单移交：" + wo.WorkOrderNo, content
}

// notifyParties sends the supervision notice to every distinct party of wo.
// Failures are logged and reported in the returned deliveries, never returned as errors.
func notifyParties(ctx context.Context, n Notifier, wo *domain.WorkOrder, clock Clock) []domain.PushDelivery {
	days := domain.OverdueDays(wo.Deadline, clock.Now(), clock.Location)
	targets := wo.NotifyTargets()
	deliveries := make([]domain.PushDelivery, 0, len(targets))

	for _, target := range targets {
		userID := target.UserID
		title, content := superviseNotice(wo, target.Role, days)
		d := domain.PushDelivery{
			WorkOrderID: wo.ID,
			WorkOrderNo: wo.WorkOrderNo,
			UserID:      userID,
			Role:        target.Role,
		}
		if err := n.Notify(ctx, &userID, title, content); err != nil {
			d.Error = err.Error()
			notificationsSent.WithLabelValues("failed").Inc()
			logger.GetLogger().Warn().Err(err).
				Str("workorder_no", wo.WorkOrderNo).
				Uint64("user_id", userID).
				Str("role", string(target.Role)).
				Msg("supervision notice failed")
		} else {
			d.Delivered = true
			notificationsSent.WithLabelValues("delivered").Inc()
		}
		deliveries = append(deliveries, d)
	}
	return deliveries
}
