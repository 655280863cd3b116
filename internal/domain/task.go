package domain

import (
	"fmt"
	"time"
)

// TaskCycle recurrence of an inspection task
type TaskCycle string

const (
	CycleOnce    TaskCycle = "once"
	CycleDaily   TaskCycle = "daily"
	CycleWeekly  TaskCycle = "weekly"
	CycleMonthly TaskCycle = "monthly"
	CycleYearly  TaskCycle = "yearly"
	CycleCustom  TaskCycle = "custom"
)

var taskCycleLabels = map[TaskCycle]string{
	CycleOnce:    "不重复",
	CycleDaily:   "每日",
	CycleWeekly:  "每周",
	CycleMonthly: "每月",
	CycleYearly:  "每年",
	CycleCustom:  "自定义",
}

func (c TaskCycle) Label() string { return taskCycleLabels[c] }

func (c TaskCycle) Valid() bool {
	_, ok := taskCycleLabels[c]
	return ok
}

// ParseTaskCycle accepts either the code ("weekly") or the display label ("每周")
func ParseTaskCycle(v string) (TaskCycle, error) {
	if v == "" {
		return CycleOnce, nil
	}
	if c := TaskCycle(v); c.Valid() {
		return c, nil
	}
	for c, label := range taskCycleLabels {
		if label == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid cycle %q", v)
}

// TaskStatus execution state of a task
type TaskStatus int

const (
	TaskPending   TaskStatus = 0 // 待执行
	TaskRunning   TaskStatus = 1 // 执行中
	TaskDone      TaskStatus = 2 // 已完成
	TaskPaused    TaskStatus = 3 // 已暂停
	TaskCancelled TaskStatus = 4 // 已取消
)

var taskStatusLabels = map[TaskStatus]string{
	TaskPending:   "待执行",
	TaskRunning:   "执行中",
	TaskDone:      "已完成",
	TaskPaused:    "已暂停",
	TaskCancelled: "已取消",
}

func (s TaskStatus) Label() string { return taskStatusLabels[s] }

func (s TaskStatus) Valid() bool {
	_, ok := taskStatusLabels[s]
	return ok
}

// Task inspection campaign over a set of merchants
type Task struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string     `gorm:"column:name;size:255;not null" json:"name"`
	ManagerID  *uint64    `gorm:"column:manager_id;index" json:"manager_id"`
	Manager    *User      `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL" json:"manager,omitempty"`
	Cycle      TaskCycle  `gorm:"column:cycle;size:20;not null" json:"cycle"`
	StartTime  time.Time  `gorm:"column:start_time;not null" json:"start_time"`
	EndTime    time.Time  `gorm:"column:end_time;not null" json:"end_time"`
	Merchants  []Merchant `gorm:"many2many:task_merchants;joinForeignKey:TaskID;joinReferences:MerchantID" json:"merchants,omitempty"`
	CheckItems string     `gorm:"column:check_items;type:text" json:"check_items"`
	Status     TaskStatus `gorm:"column:status;default:0;index" json:"status"`
	Remark     string     `gorm:"column:remark;type:text" json:"remark"`
	CreatorID  *uint64    `gorm:"column:creator_id" json:"creator_id,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Task) TableName() string {
	return "tasks"
}

// TaskFilter task list options
type TaskFilter struct {
	Name       string
	Cycle      TaskCycle
	Status     *TaskStatus
	MerchantID *uint64
	Page       int
	Limit      int
}
