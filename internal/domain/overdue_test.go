package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func shanghai(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("CST", 8*3600)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestDateOf_UsesLocation(t *testing.T) {
	loc := shanghai(t)
	// 2024-03-01 18:00 UTC is already 2024-03-02 in UTC+8
	now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), DateOf(now, loc))
}

func TestOverdueDays(t *testing.T) {
	loc := shanghai(t)
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, loc)

	tests := []struct {
		name     string
		deadline *time.Time
		want     int
	}{
		{"no deadline", nil, 0},
		{"future", datePtr(2024, 3, 12), 0},
		{"today", datePtr(2024, 3, 10), 0},
		{"yesterday", datePtr(2024, 3, 9), 1},
		{"five days", datePtr(2024, 3, 5), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(tt.deadline, now, loc))
		})
	}
}

func TestOverdueHours(t *testing.T) {
	loc := shanghai(t)
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, loc)

	assert.Equal(t, 0, OverdueHours(nil, now, loc))
	assert.Equal(t, 0, OverdueHours(datePtr(2024, 3, 11), now, loc))
	assert.Equal(t, 9, OverdueHours(datePtr(2024, 3, 10), now, loc))
	assert.Equal(t, 33, OverdueHours(datePtr(2024, 3, 9), now, loc))
}

func TestOverdueDurationDisplay(t *testing.T) {
	assert.Equal(t, "0小时", OverdueDurationDisplay(0, 0))
	assert.Equal(t, "9小时", OverdueDurationDisplay(0, 9))
	assert.Equal(t, "1天9小时", OverdueDurationDisplay(1, 33))
	assert.Equal(t, "2天", OverdueDurationDisplay(2, 48))
	assert.Equal(t, "3天", OverdueDurationDisplay(3, 0))
}

func TestLagLevelFor(t *testing.T) {
	assert.Equal(t, LagNormal, LagLevelFor(0))
	assert.Equal(t, LagMild, LagLevelFor(1))
	assert.Equal(t, LagModerate, LagLevelFor(2))
	assert.Equal(t, LagModerate, LagLevelFor(3))
	assert.Equal(t, LagSevere, LagLevelFor(4))

	info := LagSevere.Info()
	assert.Equal(t, "严重滞后", info.Label)
	assert.Equal(t, "danger", info.Type)
	assert.Equal(t, "success", LagNormal.Type())
}

func TestWorkOrderStatus(t *testing.T) {
	assert.Equal(t, "已逾期", StatusOverdue.Label())
	assert.True(t, StatusPendingRecheck.IsOpen())
	assert.False(t, StatusCompleted.IsOpen())
	assert.False(t, StatusOverdue.IsOpen())
	assert.False(t, WorkOrderStatus(9).Valid())

	s, err := ParseWorkOrderStatus("2")
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseWorkOrderStatus("7")
	assert.Error(t, err)
	_, err = ParseWorkOrderStatus("x")
	assert.Error(t, err)
}

func TestNotifyTargets_DedupAndTransfer(t *testing.T) {
	a, b := uint64(1), uint64(2)
	wo := &WorkOrder{InspectorID: &a, ResponsiblePersonID: &a, TransferPersonID: &b}

	targets := wo.NotifyTargets()
	assert.Equal(t, []NotifyTarget{{UserID: 1, Role: RoleInspector}}, targets)

	wo.IsTransferred = true
	targets = wo.NotifyTargets()
	assert.Len(t, targets, 2)
	assert.Equal(t, RoleTransferPerson, targets[1].Role)
}

func TestParseTaskCycle(t *testing.T) {
	c, err := ParseTaskCycle("每周")
	assert.NoError(t, err)
	assert.Equal(t, CycleWeekly, c)

	c, err = ParseTaskCycle("monthly")
	assert.NoError(t, err)
	assert.Equal(t, CycleMonthly, c)

	c, err = ParseTaskCycle("")
	assert.NoError(t, err)
	assert.Equal(t, CycleOnce, c)

	_, err = ParseTaskCycle("hourly")
	assert.Error(t, err)
}

func TestPushResultDetail_Status(t *testing.T) {
	assert.Equal(t, PushSuccess, PushResultDetail{}.Status())
	assert.Equal(t, PushSuccess, PushResultDetail{Total: 2, Delivered: 2}.Status())
	assert.Equal(t, PushFailed, PushResultDetail{Total: 2, Failed: 2}.Status())
	assert.Equal(t, PushPartial, PushResultDetail{Total: 2, Delivered: 1, Failed: 1}.Status())
}
