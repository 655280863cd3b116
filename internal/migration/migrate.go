package migration

import (
	"fmt"
	"time"

	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/gorm"
)

// Models every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Merchant{},
		&domain.Task{},
		&domain.WorkOrder{},
		&domain.WorkOrderSubmission{},
		&domain.WorkOrderSequence{},
		&domain.SupervisionPush{},
		&domain.MessageCenter{},
		&domain.MessageCenterTargetUser{},
	}
}

// Run executes AutoMigrate for all tables
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts demo registry data when the users table is empty
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []domain.User{
			{Username: "admin", Name: "管理员", Mobile: "13800000000"},
			{Username: "inspector01", Name: "张检查", Mobile: "13800000001"},
			{Username: "grid01", Name: "李包保", Mobile: "13800000002"},
			{Username: "street01", Name: "王街道", Mobile: "13800000003"},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		merchants := []domain.Merchant{
			{Name: "东方大酒店", Manager: "赵经理", Phone: "0531-88000001", Address: "历下区泉城路1号", ResponsiblePersonID: &users[2].ID},
			{Name: "便民小超市", Manager: "钱老板", Phone: "0531-88000002", Address: "市中区经四路8号", ResponsiblePersonID: &users[2].ID},
			{Name: "平安加油站", Manager: "孙站长", Phone: "0531-88000003", Address: "槐荫区经十路99号"},
		}
		if err := tx.Create(&merchants).Error; err != nil {
			return err
		}

		now := time.Now()
		task := domain.Task{
			Name:       "燃气安全专项检查",
			ManagerID:  &users[1].ID,
			Cycle:      domain.CycleMonthly,
			StartTime:  now,
			EndTime:    now.AddDate(0, 3, 0),
			Merchants:  merchants[:2],
			CheckItems: "燃气报警器,燃气自动切断装置,安全生产制度",
		}
		return tx.Omit("Merchants.*").Create(&task).Error
	})
}

// TableCount row count of one table
type TableCount struct {
	Table string
	Rows  int64
}

// Counts returns the row count of every migrated table, join tables included
func Counts(db *gorm.DB) ([]TableCount, error) {
	tables := make([]string, 0, len(Models())+2)
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse %T: %w", m, err)
		}
		tables = append(tables, stmt.Schema.Table)
	}
	tables = append(tables, "task_merchants", "supervision_push_workorders")

	out := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := db.Table(t).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out = append(out, TableCount{Table: t, Rows: n})
	}
	return out, nil
}
