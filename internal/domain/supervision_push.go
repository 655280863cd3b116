package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PushMethod channel used for a supervision push
type PushMethod string

const (
	PushSMS      PushMethod = "sms"
	PushEmail    PushMethod = "email"
	PushSystem   PushMethod = "system"
	PushMultiple PushMethod = "multiple"
)

var pushMethodLabels = map[PushMethod]string{
	PushSMS:      "短信",
	PushEmail:    "邮件",
	PushSystem:   "系统消息",
	PushMultiple: "多种方式",
}

func (m PushMethod) Label() string { return pushMethodLabels[m] }

func (m PushMethod) Valid() bool {
	_, ok := pushMethodLabels[m]
	return ok
}

// PushStatus outcome of a supervision push
type PushStatus string

const (
	PushPending PushStatus = "pending"
	PushSuccess PushStatus = "success"
	PushFailed  PushStatus = "failed"
	PushPartial PushStatus = "partial"
)

var pushStatusLabels = map[PushStatus]string{
	PushPending: "待推送",
	PushSuccess: "推送成功",
	PushFailed:  "推送失败",
	PushPartial: "部分成功",
}

func (s PushStatus) Label() string { return pushStatusLabels[s] }

func (s PushStatus) Valid() bool {
	_, ok := pushStatusLabels[s]
	return ok
}

// DefaultRegulatoryUnit used when the caller leaves the unit empty
const DefaultRegulatoryUnit = "监管单位"

// SupervisionPush audit record of one escalation broadcast.
// The WorkOrders association is written once at creation and never changed.
type SupervisionPush struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          string         `gorm:"column:title;size:255;not null" json:"title"`
	WorkOrders     []WorkOrder    `gorm:"many2many:supervision_push_workorders;joinForeignKey:PushID;joinReferences:WorkOrderID" json:"workorders,omitempty"`
	RegulatoryUnit string         `gorm:"column:regulatory_unit;size:255" json:"regulatory_unit"`
	PushMethod     PushMethod     `gorm:"column:push_method;size:20;not null" json:"push_method"`
	PushStatus     PushStatus     `gorm:"column:push_status;size:20;not null;index" json:"push_status"`
	PushContent    string         `gorm:"column:push_content;type:text" json:"push_content"`
	PushResult     datatypes.JSON `gorm:"column:push_result" json:"push_result"`
	PushTime       *time.Time     `gorm:"column:push_time" json:"push_time"`
	CreatorID      *uint64        `gorm:"column:creator_id" json:"creator_id,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (SupervisionPush) TableName() string {
	return "supervision_pushes"
}

// PushDelivery one recipient outcome stored in PushResult
type PushDelivery struct {
	WorkOrderID uint64     `json:"workorder_id"`
	WorkOrderNo string     `json:"workorder_no"`
	UserID      uint64     `json:"user_id"`
	Role        NotifyRole `json:"role"`
	Delivered   bool       `json:"delivered"`
	Error       string     `json:"error,omitempty"`
}

// PushResultDetail JSON document stored in SupervisionPush.PushResult
type PushResultDetail struct {
	Total      int            `json:"total"`
	Delivered  int            `json:"delivered"`
	Failed     int            `json:"failed"`
	Deliveries []PushDelivery `json:"deliveries"`
}

// Status derives the push status from the delivery counts
func (d PushResultDetail) Status() PushStatus {
	switch {
	case d.Failed == 0:
		return PushSuccess
	case d.Delivered == 0:
		return PushFailed
	default:
		return PushPartial
	}
}

// PushHistoryFilter push history options
type PushHistoryFilter struct {
	PushStatus PushStatus
	PushMethod PushMethod
	Search     string
	Page       int
	Limit      int
}
