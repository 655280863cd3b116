package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB a MySQL-dialect gorm handle over sqlmock, for asserting the SQL sent to production
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	return openMockDB(t, func(conn gorm.ConnPool) gorm.Dialector {
		return mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true})
	})
}

// setupPostgresMockDB same over the Postgres dialect
func setupPostgresMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	return openMockDB(t, func(conn gorm.ConnPool) gorm.Dialector {
		return postgres.New(postgres.Config{Conn: conn})
	})
}

func openMockDB(t *testing.T, dialector func(gorm.ConnPool) gorm.Dialector) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(dialector(sqlDB), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestWorkOrderRepository_MarkOverdue_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkOrderRepository(db)
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `workorders` SET `status`=\\?.*WHERE status IN \\(\\?,\\?\\) AND \\(deadline IS NOT NULL AND deadline < \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.MarkOverdue(context.Background(), today)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkOrderRepository_Supervise_RollsBackOnUpdateError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `workorders` WHERE id IN \\(\\?,\\?\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec("UPDATE `workorders` SET .*WHERE id IN \\(\\?,\\?\\)").
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	ids, err := repo.Supervise(context.Background(), []uint64{1, 2})
	assert.Error(t, err)
	assert.Nil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkOrderRepository_ReserveSequence_PostgresSQL(t *testing.T) {
	db, mock := setupPostgresMockDB(t)
	repo := NewWorkOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "workorder_no" FROM "workorders" WHERE workorder_no LIKE \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"workorder_no"}).AddRow("WO20240310004"))
	mock.ExpectExec(`INSERT INTO "workorder_sequences" .*ON CONFLICT \("seq_date"\) DO UPDATE SET "last_value"=workorder_sequences\.last_value \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "workorder_sequences" WHERE seq_date = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"seq_date", "last_value", "updated_at"}).AddRow("20240310", 5, time.Now()))
	mock.ExpectCommit()

	seq, err := repo.ReserveSequence(context.Background(), "WO", "20240310")
	require.NoError(t, err)
	assert.Equal(t, 5, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkOrderRepository_ReserveSequence_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `workorder_no` FROM `workorders` WHERE workorder_no LIKE \\?").
		WillReturnRows(sqlmock.NewRows([]string{"workorder_no"}))
	mock.ExpectExec("INSERT INTO `workorder_sequences` .*ON DUPLICATE KEY UPDATE `last_value`=workorder_sequences\\.last_value \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `workorder_sequences` WHERE seq_date = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"seq_date", "last_value", "updated_at"}).AddRow("20240310", 1, time.Now()))
	mock.ExpectCommit()

	seq, err := repo.ReserveSequence(context.Background(), "WO", "20240310")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
