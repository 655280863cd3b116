package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/workorders?"+rawQuery, nil)
	return c
}

func TestQueryTime(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)

	t.Run("absent", func(t *testing.T) {
		v, err := queryTime(queryContext(""), "report_time_after", cst, false)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("bare date lower bound starts the local day", func(t *testing.T) {
		v, err := queryTime(queryContext("report_time_after=2024-03-10"), "report_time_after", cst, false)
		require.NoError(t, err)
		assert.True(t, v.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, cst)), v)
	})

	t.Run("bare date upper bound ends the local day", func(t *testing.T) {
		v, err := queryTime(queryContext("report_time_before=2024-03-10"), "report_time_before", cst, true)
		require.NoError(t, err)
		assert.True(t, v.Equal(time.Date(2024, 3, 10, 23, 59, 59, 999999999, cst)), v)
	})

	t.Run("rfc3339 kept as is", func(t *testing.T) {
		v, err := queryTime(queryContext("report_time_before=2024-03-10T08:30:00Z"), "report_time_before", cst, true)
		require.NoError(t, err)
		assert.True(t, v.Equal(time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)), v)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := queryTime(queryContext("report_time_after=yesterday"), "report_time_after", cst, false)
		assert.Error(t, err)
	})
}
