package domain

import "time"

// WorkOrderView work order with its display labels and derived overdue values
type WorkOrderView struct {
	*WorkOrder
	StatusDisplay                string `json:"status_display"`
	CheckCategoryDisplay         string `json:"check_category_display"`
	HazardLevelDisplay           string `json:"hazard_level_display"`
	RectificationCategoryDisplay string `json:"rectification_category_display"`
	MerchantName                 string `json:"merchant_name"`
	InspectorName                string `json:"inspector_name"`
	ResponsiblePersonName        string `json:"responsible_person_name"`
	TransferPersonName           string `json:"transfer_person_name"`
	OverdueDays                  int    `json:"overdue_days"`
}

// NewWorkOrderView builds the response form of w as of now
func NewWorkOrderView(w *WorkOrder, now time.Time, loc *time.Location) WorkOrderView {
	v := WorkOrderView{
		WorkOrder:                    w,
		StatusDisplay:                w.Status.Label(),
		CheckCategoryDisplay:         w.CheckCategory.Label(),
		HazardLevelDisplay:           w.HazardLevel.Label(),
		RectificationCategoryDisplay: w.RectificationCategory.Label(),
		InspectorName:                w.Inspector.DisplayName(),
		ResponsiblePersonName:        w.ResponsiblePerson.DisplayName(),
		TransferPersonName:           w.TransferPerson.DisplayName(),
	}
	if w.Merchant != nil {
		v.MerchantName = w.Merchant.Name
	}
	if w.Status != StatusCompleted {
		v.OverdueDays = OverdueDays(w.Deadline, now, loc)
	}
	return v
}

// SupervisionItem one row of the supervision queue
type SupervisionItem struct {
	ID                     uint64          `json:"id"`
	WorkOrderNo            string          `json:"workorder_no"`
	MerchantName           string          `json:"merchant_name"`
	MerchantManager        string          `json:"merchant_manager"`
	MerchantPhone          string          `json:"merchant_phone"`
	CheckCategory          CheckCategory   `json:"check_category"`
	CheckCategoryDisplay   string          `json:"check_category_display"`
	CheckItem              string          `json:"check_item"`
	ProblemDescription     string          `json:"problem_description"`
	HazardLevel            HazardLevel     `json:"hazard_level"`
	HazardLevelDisplay     string          `json:"hazard_level_display"`
	InspectorName          string          `json:"inspector_name"`
	ResponsiblePersonName  string          `json:"responsible_person_name"`
	TransferPersonName     string          `json:"transfer_person_name"`
	Deadline               *time.Time      `json:"deadline"`
	Status                 WorkOrderStatus `json:"status"`
	StatusDisplay          string          `json:"status_display"`
	IsSupervised           bool            `json:"is_supervised"`
	IsTransferred          bool            `json:"is_transferred"`
	OverdueDays            int             `json:"overdue_days"`
	OverdueHours           int             `json:"overdue_hours"`
	OverdueDurationDisplay string          `json:"overdue_duration_display"`
	LagLevel               LagLevelInfo    `json:"lag_level"`
	LastFeedback           string          `json:"last_feedback"`
}

// NoFeedback shown when an order carries no remark
const NoFeedback = "无任何反馈"

// NewSupervisionItem builds the queue row of w as of now
func NewSupervisionItem(w *WorkOrder, now time.Time, loc *time.Location) SupervisionItem {
	days := OverdueDays(w.Deadline, now, loc)
	hours := OverdueHours(w.Deadline, now, loc)
	item := SupervisionItem{
		ID:                     w.ID,
		WorkOrderNo:            w.WorkOrderNo,
		CheckCategory:          w.CheckCategory,
		CheckCategoryDisplay:   w.CheckCategory.Label(),
		CheckItem:              w.CheckItem,
		ProblemDescription:     w.ProblemDescription,
		HazardLevel:            w.HazardLevel,
		HazardLevelDisplay:     w.HazardLevel.Label(),
		InspectorName:          w.Inspector.DisplayName(),
		ResponsiblePersonName:  w.ResponsiblePerson.DisplayName(),
		TransferPersonName:     w.TransferPerson.DisplayName(),
		Deadline:               w.Deadline,
		Status:                 w.Status,
		StatusDisplay:          w.Status.Label(),
		IsSupervised:           w.IsSupervised,
		IsTransferred:          w.IsTransferred,
		OverdueDays:            days,
		OverdueHours:           hours,
		OverdueDurationDisplay: OverdueDurationDisplay(days, hours),
		LagLevel:               LagLevelFor(days).Info(),
		LastFeedback:           w.Remark,
	}
	if w.Merchant != nil {
		item.MerchantName = w.Merchant.Name
		item.MerchantManager = w.Merchant.Manager
		item.MerchantPhone = w.Merchant.Phone
	}
	if item.LastFeedback == "" {
		item.LastFeedback = NoFeedback
	}
	return item
}

// PushHistoryItem push record with display labels and its order count
type PushHistoryItem struct {
	*SupervisionPush
	PushMethodDisplay string `json:"push_method_display"`
	PushStatusDisplay string `json:"push_status_display"`
	WorkOrderCount    int64  `json:"workorder_count"`
}

// PushOutcome result of one batch push
type PushOutcome struct {
	PushID            uint64     `json:"push_id"`
	Count             int        `json:"count"`
	NotificationCount int        `json:"notification_count"`
	Status            PushStatus `json:"push_status"`
}

// TaskView task with display labels
type TaskView struct {
	*Task
	CycleDisplay  string `json:"cycle_display"`
	StatusDisplay string `json:"status_display"`
	ManagerName   string `json:"manager_name"`
	MerchantCount int    `json:"merchant_count"`
}

// NewTaskView builds the response form of t
func NewTaskView(t *Task) TaskView {
	return TaskView{
		Task:          t,
		CycleDisplay:  t.Cycle.Label(),
		StatusDisplay: t.Status.Label(),
		ManagerName:   t.Manager.DisplayName(),
		MerchantCount: len(t.Merchants),
	}
}
