package domain

import "time"

// MessageCenter in-system message (站内信)
type MessageCenter struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;size:100;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	CreatorID *uint64   `gorm:"column:creator_id" json:"creator_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name
func (MessageCenter) TableName() string {
	return "message_center"
}

// MessageCenterTargetUser delivery of a message to one user
type MessageCenterTargetUser struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID uint64         `gorm:"column:message_id;index;not null" json:"message_id"`
	Message   *MessageCenter `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint64         `gorm:"column:user_id;index;not null" json:"user_id"`
	IsRead    bool           `gorm:"column:is_read;default:false;index" json:"is_read"`
	ReadAt    *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (MessageCenterTargetUser) TableName() string {
	return "message_center_target_users"
}

// NotificationItem a message as seen by its recipient
type NotificationItem struct {
	ID        uint64     `json:"id"`
	MessageID uint64     `json:"message_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationSummaryResponse unread count response
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}
