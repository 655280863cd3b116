package service

import (
	"context"
	"testing"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService(t *testing.T) {
	db := setupTestDB(t)
	fx := seedFixture(t, db)
	clock := fixedClock()
	orders := repository.NewWorkOrderRepository(db)
	tasks := repository.NewTaskRepository(db)
	merchants := repository.NewMerchantRepository(db)
	users := repository.NewUserRepository(db)
	wos := NewWorkOrderService(orders, tasks, merchants, users, NewOverdueSweeper(orders, clock), new(MockNotifier), clock, "WO")
	svc := NewTaskService(tasks, merchants, users, wos)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects inverted window", func(t *testing.T) {
		_, err := svc.Create(ctx, fx.inspector.ID, &domain.CreateTaskRequest{
			Name: "x", StartTime: start, EndTime: start,
		})
		assert.ErrorIs(t, err, common.ErrInvalidTimeRange)
	})

	t.Run("rejects unknown cycle and merchant", func(t *testing.T) {
		_, err := svc.Create(ctx, fx.inspector.ID, &domain.CreateTaskRequest{
			Name: "x", Cycle: "hourly", StartTime: start, EndTime: start.AddDate(0, 1, 0),
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = svc.Create(ctx, fx.inspector.ID, &domain.CreateTaskRequest{
			Name: "x", StartTime: start, EndTime: start.AddDate(0, 1, 0), MerchantIDs: []uint64{fx.merchant.ID, 555},
		})
		assert.ErrorIs(t, err, common.ErrMerchantNotFound)
	})

	t.Run("creates with label cycle", func(t *testing.T) {
		v, err := svc.Create(ctx, fx.inspector.ID, &domain.CreateTaskRequest{
			Name:        "消防季度检查",
			ManagerID:   &fx.inspector.ID,
			Cycle:       "每周",
			StartTime:   start,
			EndTime:     start.AddDate(0, 3, 0),
			MerchantIDs: []uint64{fx.merchant.ID, fx.merchant.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CycleWeekly, v.Cycle)
		assert.Equal(t, "每周", v.CycleDisplay)
		assert.Equal(t, "待执行", v.StatusDisplay)
		assert.Equal(t, "张检查", v.ManagerName)
		assert.Equal(t, 1, v.MerchantCount)
	})

	t.Run("lists task work orders", func(t *testing.T) {
		_, err := wos.Create(ctx, fx.inspector.ID, &domain.CreateWorkOrderRequest{
			TaskID: &fx.task.ID, Deadline: "2024-03-08",
		})
		require.NoError(t, err)

		views, total, err := svc.ListWorkOrders(ctx, fx.task.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, domain.StatusOverdue, views[0].Status)

		_, _, err = svc.ListWorkOrders(ctx, 9999, 1, 10)
		assert.ErrorIs(t, err, common.ErrTaskNotFound)
	})
}
