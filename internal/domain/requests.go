package domain

import "time"

// CreateWorkOrderRequest body of POST /api/workorders
type CreateWorkOrderRequest struct {
	MerchantID            *uint64 `json:"merchant_id"`
	TaskID                *uint64 `json:"task_id"`
	CheckCategory         string  `json:"check_category" validate:"omitempty,oneof=safety_manage gas fire liquid_fuel"`
	CheckItem             string  `json:"check_item" validate:"max=255"`
	InspectorID           *uint64 `json:"inspector_id"`
	ResponsiblePersonID   *uint64 `json:"responsible_person_id"`
	HazardLevel           string  `json:"hazard_level" validate:"omitempty,oneof=high medium low"`
	ProblemDescription    string  `json:"problem_description"`
	RectificationCategory string  `json:"rectification_category" validate:"omitempty,oneof=immediate deadline transfer"`
	Deadline              string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Remark                string  `json:"remark"`
}

// UpdateWorkOrderRequest body of PUT /api/workorders/:id; nil fields are left unchanged.
// Status, order number and report time are not updatable.
type UpdateWorkOrderRequest struct {
	MerchantID            *uint64 `json:"merchant_id"`
	CheckCategory         *string `json:"check_category" validate:"omitempty,oneof=safety_manage gas fire liquid_fuel"`
	CheckItem             *string `json:"check_item" validate:"omitempty,max=255"`
	InspectorID           *uint64 `json:"inspector_id"`
	ResponsiblePersonID   *uint64 `json:"responsible_person_id"`
	HazardLevel           *string `json:"hazard_level" validate:"omitempty,oneof=high medium low"`
	ProblemDescription    *string `json:"problem_description"`
	RectificationCategory *string `json:"rectification_category" validate:"omitempty,oneof=immediate deadline transfer"`
	Deadline              *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Remark                *string `json:"remark"`
}

// CompleteRequest body of POST /api/workorders/:id/complete
type CompleteRequest struct {
	Remark string `json:"remark"`
}

// TransferRequest body of POST /api/workorders/:id/transfer
type TransferRequest struct {
	TransferPersonID uint64 `json:"transfer_person" validate:"required"`
	TransferRemark   string `json:"transfer_remark"`
}

// BatchSuperviseRequest body of POST /api/workorders/batch-supervise
type BatchSuperviseRequest struct {
	IDs []uint64 `json:"ids"`
}

// SubmitRequest body of POST /api/workorders/:id/submissions
type SubmitRequest struct {
	IsRecheck   Flag   `json:"is_recheck"`
	IsQualified Flag   `json:"is_qualified"`
	Remark      string `json:"remark"`
}

// BatchPushRequest body of POST /api/supervision/batch-push
type BatchPushRequest struct {
	WorkOrderIDs   []uint64 `json:"workorder_ids"`
	RegulatoryUnit string   `json:"regulatory_unit" validate:"max=255"`
	PushMethod     string   `json:"push_method" validate:"omitempty,oneof=sms email system multiple"`
}

// CreateTaskRequest body of POST /api/tasks.
// Cycle accepts the code or its display label.
type CreateTaskRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	ManagerID   *uint64   `json:"manager_id"`
	Cycle       string    `json:"cycle"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	MerchantIDs []uint64  `json:"merchant_ids"`
	CheckItems  string    `json:"check_items"`
	Remark      string    `json:"remark"`
}
