package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	assert.Equal(t, int64(3), NewMeta(1, 10, 21).TotalPages)
	assert.Equal(t, int64(2), NewMeta(1, 10, 20).TotalPages)
	assert.Equal(t, int64(0), NewMeta(1, 10, 0).TotalPages)
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		write      func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"not found", func(c *gin.Context) { ErrorResponse(c, http.StatusNotFound, "工单不存在", ErrWorkOrderNotFound) }, 404, "NOT_FOUND"},
		{"conflict", func(c *gin.Context) { ConflictResponse(c, "工单已完成", ErrAlreadyCompleted) }, 400, "CONFLICT"},
		{"bad request", func(c *gin.Context) { ErrorResponse(c, http.StatusBadRequest, "bad", errors.New("x")) }, 400, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}
