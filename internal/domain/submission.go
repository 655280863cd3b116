package domain

import "time"

// WorkOrderSubmission append-only progress entry (initial submission or recheck)
type WorkOrderSubmission struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkOrderID uint64     `gorm:"column:workorder_id;index;not null" json:"workorder_id"`
	WorkOrder   *WorkOrder `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"-"`
	SubmitTime  time.Time  `gorm:"column:submit_time;not null;index" json:"submit_time"`
	IsRecheck   bool       `gorm:"column:is_recheck;default:false" json:"is_recheck"`
	IsQualified bool       `gorm:"column:is_qualified;default:false" json:"is_qualified"`
	Remark      string     `gorm:"column:remark;type:text" json:"remark"`
	SubmitterID *uint64    `gorm:"column:submitter_id" json:"submitter_id"`
	Submitter   *User      `gorm:"foreignKey:SubmitterID;constraint:OnDelete:SET NULL" json:"submitter,omitempty"`
}

// TableName returns the table name
func (WorkOrderSubmission) TableName() string {
	return "workorder_submissions"
}

// QualifiedLabel 合格/不合格
func (s *WorkOrderSubmission) QualifiedLabel() string {
	if s.IsQualified {
		return "合格"
	}
	return "不合格"
}

// SubmissionItem submission as returned to clients
type SubmissionItem struct {
	ID                 uint64    `json:"id"`
	SubmitTime         time.Time `json:"submit_time"`
	IsRecheck          Flag      `json:"is_recheck"`
	IsQualified        Flag      `json:"is_qualified"`
	IsQualifiedDisplay string    `json:"is_qualified_display"`
	Remark             string    `json:"remark"`
	SubmitterID        *uint64   `json:"submitter_id,omitempty"`
	SubmitterName      string    `json:"submitter_name,omitempty"`
}

// ToItem converts a submission to its response form
func (s *WorkOrderSubmission) ToItem() SubmissionItem {
	item := SubmissionItem{
		ID:                 s.ID,
		SubmitTime:         s.SubmitTime,
		IsRecheck:          Flag(s.IsRecheck),
		IsQualified:        Flag(s.IsQualified),
		IsQualifiedDisplay: s.QualifiedLabel(),
		Remark:             s.Remark,
		SubmitterID:        s.SubmitterID,
	}
	if s.Submitter != nil {
		item.SubmitterName = s.Submitter.DisplayName()
	}
	return item
}
