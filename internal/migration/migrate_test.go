package migration

import (
	"testing"

	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one connection, one in-memory database
	return db
}

func TestRun_CreatesTables(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Run(db))

	for _, table := range []string{
		"users", "merchants", "tasks", "task_merchants", "workorders", "workorder_submissions",
		"workorder_sequences", "supervision_pushes", "supervision_push_workorders",
		"message_center", "message_center_target_users",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// idempotent
	require.NoError(t, Run(db))
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Run(db))

	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var users, links int64
	db.Model(&domain.User{}).Count(&users)
	db.Table("task_merchants").Count(&links)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(2), links)
}

func TestCounts_AfterSeed(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Run(db))
	require.NoError(t, Seed(db))

	counts, err := Counts(db)
	require.NoError(t, err)

	byTable := map[string]int64{}
	for _, c := range counts {
		byTable[c.Table] = c.Rows
	}
	assert.Equal(t, int64(4), byTable["users"])
	assert.Equal(t, int64(3), byTable["merchants"])
	assert.Equal(t, int64(1), byTable["tasks"])
	assert.Equal(t, int64(0), byTable["workorders"])
	assert.Equal(t, int64(2), byTable["task_merchants"])
}
