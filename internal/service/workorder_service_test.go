package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/migration"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID *uint64, title, content string) error {
	var id uint64
	if userID != nil {
		id = *userID
	}
	args := m.Called(id, title, content)
	return args.Error(0)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))
	return db
}

var shanghai = time.FixedZone("CST", 8*3600)

// fixedClock 2024-03-10 10:00 local time
func fixedClock() Clock {
	return Clock{
		Now:      func() time.Time { return time.Date(2024, 3, 10, 10, 0, 0, 0, shanghai) },
		Location: shanghai,
	}
}

type fixture struct {
	inspector   domain.User
	responsible domain.User
	transfer    domain.User
	merchant    domain.Merchant
	task        domain.Task
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	var f fixture
	f.inspector = domain.User{Username: "inspector", Name: "张检查"}
	f.responsible = domain.User{Username: "grid", Name: "李包保"}
	f.transfer = domain.User{Username: "street", Name: "王街道"}
	require.NoError(t, db.Create(&f.inspector).Error)
	require.NoError(t, db.Create(&f.responsible).Error)
	require.NoError(t, db.Create(&f.transfer).Error)

	f.merchant = domain.Merchant{Name: "东方大酒店", ResponsiblePersonID: &f.responsible.ID}
	require.NoError(t, db.Omit("ResponsiblePerson").Create(&f.merchant).Error)

	f.task = domain.Task{
		Name:      "燃气专项",
		ManagerID: &f.inspector.ID,
		Cycle:     domain.CycleOnce,
		StartTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Omit("Manager").Create(&f.task).Error)
	return f
}

type WorkOrderServiceSuite struct {
	suite.Suite
	db       *gorm.DB
	fx       fixture
	notifier *MockNotifier
	svc      *WorkOrderService
	repo     repository.WorkOrderRepository
	ctx      context.Context
}

func (s *WorkOrderServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.fx = seedFixture(s.T(), s.db)
	s.notifier = new(MockNotifier)
	s.repo = repository.NewWorkOrderRepository(s.db)
	clock := fixedClock()
	s.svc = NewWorkOrderService(
		s.repo,
		repository.NewTaskRepository(s.db),
		repository.NewMerchantRepository(s.db),
		repository.NewUserRepository(s.db),
		NewOverdueSweeper(s.repo, clock),
		s.notifier,
		clock,
		"WO",
	)
	s.ctx = context.Background()
}

func TestWorkOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(WorkOrderServiceSuite))
}

func (s *WorkOrderServiceSuite) create(deadline string) *domain.WorkOrderView {
	v, err := s.svc.Create(s.ctx, s.fx.inspector.ID, &domain.CreateWorkOrderRequest{
		MerchantID:         &s.fx.merchant.ID,
		TaskID:             &s.fx.task.ID,
		HazardLevel:        "high",
		ProblemDescription: "燃气报警器失效",
		Deadline:           deadline,
	})
	s.Require().NoError(err)
	return v
}

func (s *WorkOrderServiceSuite) TestCreate_NumbersAndInheritance() {
	first := s.create("2024-03-20")
	second := s.create("2024-03-20")

	s.Equal("WO20240310001", first.WorkOrderNo)
	s.Equal("WO20240310002", second.WorkOrderNo)
	s.Equal(domain.StatusPending, first.Status)
	s.Require().NotNil(first.InspectorID)
	s.Equal(s.fx.inspector.ID, *first.InspectorID)
	s.Require().NotNil(first.ResponsiblePersonID)
	s.Equal(s.fx.responsible.ID, *first.ResponsiblePersonID)
	s.Equal("东方大酒店", first.MerchantName)
	s.Nil(first.CompletedTime)
}

func (s *WorkOrderServiceSuite) TestCreate_RequiresDeadline() {
	_, err := s.svc.Create(s.ctx, s.fx.inspector.ID, &domain.CreateWorkOrderRequest{HazardLevel: "low"})
	s.ErrorIs(err, common.ErrDeadlineRequired)

	_, err = s.svc.Create(s.ctx, s.fx.inspector.ID, &domain.CreateWorkOrderRequest{Deadline: "2024/03/20"})
	s.ErrorIs(err, common.ErrInvalidInput)

	_, err = s.svc.Create(s.ctx, s.fx.inspector.ID, &domain.CreateWorkOrderRequest{Deadline: "2024-03-20", HazardLevel: "extreme"})
	s.ErrorIs(err, common.ErrInvalidInput)

	var count int64
	s.db.Model(&domain.WorkOrder{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *WorkOrderServiceSuite) TestList_ShowsOverdueAfterDeadline() {
	wo := s.create("2024-03-09")

	orders, total, err := s.svc.List(s.ctx, domain.WorkOrderFilter{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(domain.StatusOverdue, orders[0].Status)
	s.Equal("已逾期", orders[0].StatusDisplay)
	s.Equal(1, orders[0].OverdueDays)

	var stored domain.WorkOrder
	s.Require().NoError(s.db.First(&stored, wo.ID).Error)
	s.Equal(domain.StatusOverdue, stored.Status)
}

func (s *WorkOrderServiceSuite) TestSubmit_CompletionTimeIsMonotonic() {
	wo := s.create("2024-03-20")

	done, err := s.svc.Submit(s.ctx, s.fx.inspector.ID, wo.ID, &domain.SubmitRequest{IsQualified: true})
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, done.Status)
	s.Require().NotNil(done.CompletedTime)
	completedAt := *done.CompletedTime

	reopened, err := s.svc.Submit(s.ctx, s.fx.inspector.ID, wo.ID, &domain.SubmitRequest{IsRecheck: true})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, reopened.Status)
	s.Require().NotNil(reopened.CompletedTime)
	s.True(completedAt.Equal(*reopened.CompletedTime))

	again, err := s.svc.Submit(s.ctx, s.fx.inspector.ID, wo.ID, &domain.SubmitRequest{IsRecheck: true, IsQualified: true})
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, again.Status)
	s.True(completedAt.Equal(*again.CompletedTime))

	subs, err := s.svc.ListSubmissionsByNo(s.ctx, wo.WorkOrderNo)
	s.Require().NoError(err)
	s.Len(subs, 3)
	s.Equal("张检查", subs[0].SubmitterName)
}

func (s *WorkOrderServiceSuite) TestComplete_RejectsCompletedOrder() {
	wo := s.create("2024-03-20")

	_, err := s.svc.Complete(s.ctx, s.fx.inspector.ID, wo.ID, "")
	s.Require().NoError(err)

	_, err = s.svc.Complete(s.ctx, s.fx.inspector.ID, wo.ID, "")
	s.ErrorIs(err, common.ErrAlreadyCompleted)

	subs, err := s.svc.ListSubmissions(s.ctx, wo.ID)
	s.Require().NoError(err)
	s.Len(subs, 1)

	_, err = s.svc.Complete(s.ctx, s.fx.inspector.ID, 999, "")
	s.ErrorIs(err, common.ErrWorkOrderNotFound)
}

func (s *WorkOrderServiceSuite) TestBatchSupervise_SkipsMissingAndNotifies() {
	wo := s.create("2024-03-01")
	_, _, err := s.svc.List(s.ctx, domain.WorkOrderFilter{Page: 1, Limit: 10})
	s.Require().NoError(err)

	s.notifier.On("Notify", s.fx.inspector.ID, "督办通知："+wo.WorkOrderNo, mock.MatchedBy(func(c string) bool {
		return c == "工单\""+wo.WorkOrderNo+"\"已被督办，请尽快处理。\n商户：东方大酒店\n逾期：9天"
	})).Return(nil).Once()
	s.notifier.On("Notify", s.fx.responsible.ID, mock.Anything, mock.Anything).
		Return(errors.New("smtp down")).Once()

	count, err := s.svc.BatchSupervise(s.ctx, []uint64{wo.ID, 4242})
	s.Require().NoError(err)
	s.Equal(1, count)
	s.notifier.AssertExpectations(s.T())

	// a failed notice does not undo the escalation
	stored, err := s.repo.FindByID(s.ctx, wo.ID)
	s.Require().NoError(err)
	s.True(stored.IsSupervised)
	s.Equal(domain.StatusPending, stored.Status)

	// deadline still in the past, so the next read flips it again
	got, err := s.svc.Get(s.ctx, wo.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusOverdue, got.Status)
	s.True(got.IsSupervised)

	_, err = s.svc.BatchSupervise(s.ctx, nil)
	s.ErrorIs(err, common.ErrEmptyIDs)
}

func (s *WorkOrderServiceSuite) TestSupervise_UnknownOrder() {
	_, err := s.svc.Supervise(s.ctx, 31337)
	s.ErrorIs(err, common.ErrWorkOrderNotFound)
}

func (s *WorkOrderServiceSuite) TestTransfer() {
	wo := s.create("2024-03-20")

	_, err := s.svc.Transfer(s.ctx, wo.ID, &domain.TransferRequest{TransferPersonID: 999})
	s.ErrorIs(err, common.ErrTransferPersonNotFound)
	unchanged, err := s.repo.FindByID(s.ctx, wo.ID)
	s.Require().NoError(err)
	s.False(unchanged.IsTransferred)

	_, err = s.svc.Transfer(s.ctx, 999, &domain.TransferRequest{TransferPersonID: s.fx.transfer.ID})
	s.ErrorIs(err, common.ErrWorkOrderNotFound)

	s.notifier.On("Notify", s.fx.transfer.ID, "工单移交："+wo.WorkOrderNo, mock.Anything).Return(nil).Once()
	got, err := s.svc.Transfer(s.ctx, wo.ID, &domain.TransferRequest{
		TransferPersonID: s.fx.transfer.ID,
		TransferRemark:   "属街道管辖",
	})
	s.Require().NoError(err)
	s.True(got.IsTransferred)
	s.Equal("王街道", got.TransferPersonName)
	s.Equal(domain.StatusPending, got.Status)
	s.notifier.AssertExpectations(s.T())

	transferred, total, err := s.svc.ListTransferred(s.ctx, domain.WorkOrderFilter{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(wo.ID, transferred[0].ID)
}

func (s *WorkOrderServiceSuite) TestUpdate_KeepsStatusAndNumber() {
	wo := s.create("2024-03-20")
	desc := "已更换报警器"
	deadline := "2024-03-25"

	got, err := s.svc.Update(s.ctx, wo.ID, &domain.UpdateWorkOrderRequest{
		ProblemDescription: &desc,
		Deadline:           &deadline,
	})
	s.Require().NoError(err)
	s.Equal(desc, got.ProblemDescription)
	s.Equal(wo.WorkOrderNo, got.WorkOrderNo)
	s.Equal(domain.StatusPending, got.Status)
	s.Equal("2024-03-25", got.Deadline.Format("2006-01-02"))

	empty := ""
	_, err = s.svc.Update(s.ctx, wo.ID, &domain.UpdateWorkOrderRequest{Deadline: &empty})
	s.ErrorIs(err, common.ErrDeadlineRequired)
}
