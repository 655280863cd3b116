package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, DefaultPageSize},
		{"page=3&limit=20", 3, 20},
		{"page=0&limit=0", 1, DefaultPageSize},
		{"page=2&limit=1000", 2, MaxPageSize},
		{"page_size=15", 1, 15},
		{"page=x", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, limit := Pagination(contextWithQuery(tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestQueryUint64Ptr(t *testing.T) {
	c := contextWithQuery("task_id=5&bad=-1")
	assert.Equal(t, uint64(5), *QueryUint64Ptr(c, "task_id"))
	assert.Nil(t, QueryUint64Ptr(c, "bad"))
	assert.Nil(t, QueryUint64Ptr(c, "missing"))
}
