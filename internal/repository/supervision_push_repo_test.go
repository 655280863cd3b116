package repository

import (
	"context"
	"testing"
	"time"

	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSupervisionPushRepository_CreateLeavesOrdersUntouched(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisionPushRepository(db)
	ctx := context.Background()

	a := insertOrder(t, db, func(wo *domain.WorkOrder) { wo.Status = domain.StatusOverdue })
	b := insertOrder(t, db, func(wo *domain.WorkOrder) { wo.Status = domain.StatusOverdue })

	push := &domain.SupervisionPush{
		Title:      "督办通知-20240310120000",
		WorkOrders: []domain.WorkOrder{{ID: a.ID}, {ID: b.ID}},
		PushMethod: domain.PushSystem,
		PushStatus: domain.PushPending,
	}
	require.NoError(t, repo.Create(ctx, push))
	require.NotZero(t, push.ID)

	// orders keep their number and status
	assert.Equal(t, domain.StatusOverdue, statusOf(t, db, a.ID))
	stored, err := repo.FindByID(ctx, push.ID)
	require.NoError(t, err)
	require.Len(t, stored.WorkOrders, 2)
	nos := []string{stored.WorkOrders[0].WorkOrderNo, stored.WorkOrders[1].WorkOrderNo}
	assert.ElementsMatch(t, []string{a.WorkOrderNo, b.WorkOrderNo}, nos)

	detail := datatypes.JSON(`{"total":2,"delivered":2,"failed":0}`)
	require.NoError(t, repo.RecordOutcome(ctx, push.ID, domain.PushSuccess, detail, time.Now()))

	pushes, total, err := repo.List(ctx, domain.PushHistoryFilter{PushStatus: domain.PushSuccess, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pushes, 1)
	require.NotNil(t, pushes[0].PushTime)

	counts, err := repo.CountWorkOrders(ctx, []uint64{push.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[push.ID])
	assert.Equal(t, int64(0), counts[999])

	_, total, err = repo.List(ctx, domain.PushHistoryFilter{Search: "不存在", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
