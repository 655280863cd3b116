package domain

import (
	"fmt"
	"strconv"
	"time"
)

// WorkOrderStatus lifecycle state of a work order
type WorkOrderStatus int

const (
	StatusPending        WorkOrderStatus = 0 // 待整改
	StatusPendingRecheck WorkOrderStatus = 1 // 待复查
	StatusCompleted      WorkOrderStatus = 2 // 已完成
	StatusOverdue        WorkOrderStatus = 3 // 已逾期
)

var workOrderStatusLabels = map[WorkOrderStatus]string{
	StatusPending:        "待整改",
	StatusPendingRecheck: "待复查",
	StatusCompleted:      "已完成",
	StatusOverdue:        "已逾期",
}

// Label returns the display label
func (s WorkOrderStatus) Label() string {
	if l, ok := workOrderStatusLabels[s]; ok {
		return l
	}
	return "未知"
}

// Valid reports whether s is one of the four known states
func (s WorkOrderStatus) Valid() bool {
	_, ok := workOrderStatusLabels[s]
	return ok
}

// IsOpen reports whether the deadline check still applies to s
func (s WorkOrderStatus) IsOpen() bool {
	return s == StatusPending || s == StatusPendingRecheck
}

// OpenStatuses are the states the overdue sweep may move to OVERDUE
func OpenStatuses() []WorkOrderStatus {
	return []WorkOrderStatus{StatusPending, StatusPendingRecheck}
}

// ParseWorkOrderStatus parses a query value such as "3"
func ParseWorkOrderStatus(v string) (WorkOrderStatus, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid status %q", v)
	}
	s := WorkOrderStatus(n)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid status %q", v)
	}
	return s, nil
}

// CheckCategory inspection category
type CheckCategory string

const (
	CheckSafetyManage CheckCategory = "safety_manage"
	CheckGas          CheckCategory = "gas"
	CheckFire         CheckCategory = "fire"
	CheckLiquidFuel   CheckCategory = "liquid_fuel"
)

var checkCategoryLabels = map[CheckCategory]string{
	CheckSafetyManage: "安全管理类",
	CheckGas:          "燃气类",
	CheckFire:         "消防类",
	CheckLiquidFuel:   "液体燃料类",
}

func (c CheckCategory) Label() string { return checkCategoryLabels[c] }

func (c CheckCategory) Valid() bool {
	_, ok := checkCategoryLabels[c]
	return ok
}

// HazardLevel severity of a finding
type HazardLevel string

const (
	HazardHigh   HazardLevel = "high"
	HazardMedium HazardLevel = "medium"
	HazardLow    HazardLevel = "low"
)

var hazardLevelLabels = map[HazardLevel]string{
	HazardHigh:   "高",
	HazardMedium: "中",
	HazardLow:    "低",
}

func (h HazardLevel) Label() string { return hazardLevelLabels[h] }

func (h HazardLevel) Valid() bool {
	_, ok := hazardLevelLabels[h]
	return ok
}

// RectificationCategory how the finding must be fixed
type RectificationCategory string

const (
	RectifyImmediate RectificationCategory = "immediate"
	RectifyDeadline  RectificationCategory = "deadline"
	RectifyTransfer  RectificationCategory = "transfer"
)

var rectificationLabels = map[RectificationCategory]string{
	RectifyImmediate: "当场整改",
	RectifyDeadline:  "限期整改",
	RectifyTransfer:  "移交整改",
}

func (r RectificationCategory) Label() string { return rectificationLabels[r] }

func (r RectificationCategory) Valid() bool {
	_, ok := rectificationLabels[r]
	return ok
}

// WorkOrder one hazard finding and its rectification lifecycle
type WorkOrder struct {
	ID                    uint64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkOrderNo           string                `gorm:"column:workorder_no;size:32;uniqueIndex;not null" json:"workorder_no"`
	MerchantID            *uint64               `gorm:"column:merchant_id;index" json:"merchant_id"`
	Merchant              *Merchant             `gorm:"foreignKey:MerchantID;constraint:OnDelete:SET NULL" json:"merchant,omitempty"`
	TaskID                *uint64               `gorm:"column:task_id;index" json:"task_id"`
	Task                  *Task                 `gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL" json:"-"`
	CheckCategory         CheckCategory         `gorm:"column:check_category;size:32" json:"check_category"`
	CheckItem             string                `gorm:"column:check_item;size:255" json:"check_item"`
	InspectorID           *uint64               `gorm:"column:inspector_id;index" json:"inspector_id"`
	Inspector             *User                 `gorm:"foreignKey:InspectorID;constraint:OnDelete:SET NULL" json:"inspector,omitempty"`
	ResponsiblePersonID   *uint64               `gorm:"column:responsible_person_id;index" json:"responsible_person_id"`
	ResponsiblePerson     *User                 `gorm:"foreignKey:ResponsiblePersonID;constraint:OnDelete:SET NULL" json:"responsible_person,omitempty"`
	HazardLevel           HazardLevel           `gorm:"column:hazard_level;size:20;index" json:"hazard_level"`
	ProblemDescription    string                `gorm:"column:problem_description;type:text" json:"problem_description"`
	RectificationCategory RectificationCategory `gorm:"column:rectification_category;size:32" json:"rectification_category"`
	ReportTime            time.Time             `gorm:"column:report_time;not null" json:"report_time"`
	Deadline              *time.Time            `gorm:"column:deadline;type:date;index" json:"deadline"`
	Status                WorkOrderStatus       `gorm:"column:status;default:0;index" json:"status"`
	CompletedTime         *time.Time            `gorm:"column:completed_time" json:"completed_time"`
	IsSupervised          bool                  `gorm:"column:is_supervised;default:false;index" json:"is_supervised"`
	IsTransferred         bool                  `gorm:"column:is_transferred;default:false" json:"is_transferred"`
	TransferPersonID      *uint64               `gorm:"column:transfer_person_id;index" json:"transfer_person_id"`
	TransferPerson        *User                 `gorm:"foreignKey:TransferPersonID;constraint:OnDelete:SET NULL" json:"transfer_person,omitempty"`
	TransferRemark        string                `gorm:"column:transfer_remark;type:text" json:"transfer_remark"`
	Remark                string                `gorm:"column:remark;type:text" json:"remark"`
	CreatorID             *uint64               `gorm:"column:creator_id" json:"creator_id,omitempty"`
	CreatedAt             time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (WorkOrder) TableName() string {
	return "workorders"
}

// NotifyTargets returns the distinct users responsible for the order:
// inspector, responsible person and, when transferred, the transfer person.
func (w *WorkOrder) NotifyTargets() []NotifyTarget {
	targets := make([]NotifyTarget, 0, 3)
	seen := make(map[uint64]bool, 3)
	add := func(id *uint64, role NotifyRole) {
		if id == nil || seen[*id] {
			return
		}
		seen[*id] = true
		targets = append(targets, NotifyTarget{UserID: *id, Role: role})
	}
	add(w.InspectorID, RoleInspector)
	add(w.ResponsiblePersonID, RoleResponsiblePerson)
	if w.IsTransferred {
		add(w.TransferPersonID, RoleTransferPerson)
	}
	return targets
}

// ApplySubmission moves w to the state implied by s and returns the changed columns.
//
// A qualified submission completes the order; completed_time is stamped only by
// the first qualified initial submission. A non-qualified submission returns the
// order to PENDING, except that only a recheck may reopen a COMPLETED order.
func (w *WorkOrder) ApplySubmission(s *WorkOrderSubmission) map[string]interface{} {
	if s.IsQualified {
		w.Status = StatusCompleted
		changes := map[string]interface{}{"status": StatusCompleted}
		if !s.IsRecheck && w.CompletedTime == nil {
			t := s.SubmitTime
			w.CompletedTime = &t
			changes["completed_time"] = t
		}
		return changes
	}

	if w.Status == StatusCompleted && !s.IsRecheck {
		return map[string]interface{}{"status": StatusCompleted}
	}
	w.Status = StatusPending
	return map[string]interface{}{"status": StatusPending}
}

// NotifyRole why a user receives a supervision notice
type NotifyRole string

const (
	RoleInspector         NotifyRole = "inspector"
	RoleResponsiblePerson NotifyRole = "responsible_person"
	RoleTransferPerson    NotifyRole = "transfer_person"
)

// NotifyTarget one recipient of a supervision notice
type NotifyTarget struct {
	UserID uint64
	Role   NotifyRole
}

// WorkOrderSequence per-day counter backing order numbers
type WorkOrderSequence struct {
	SeqDate   string    `gorm:"column:seq_date;primaryKey;size:8" json:"seq_date"`
	LastValue int       `gorm:"column:last_value;not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (WorkOrderSequence) TableName() string {
	return "workorder_sequences"
}

// WorkOrderFilter list query options
type WorkOrderFilter struct {
	Status           *WorkOrderStatus
	HazardLevel      HazardLevel
	Deadline         *time.Time
	TaskID           *uint64
	MerchantID       *uint64
	InspectorID      *uint64
	IsTransferred    *bool
	Search           string
	ReportTimeAfter  *time.Time
	ReportTimeBefore *time.Time
	Page             int
	Limit            int
}

// SupervisionFilter supervision queue options
type SupervisionFilter struct {
	// DeadlineOnOrBefore set from overdue_hours: date(now - hours)
	DeadlineOnOrBefore *time.Time
	HazardLevel        HazardLevel
	Status             *WorkOrderStatus
	Page               int
	Limit              int
}
