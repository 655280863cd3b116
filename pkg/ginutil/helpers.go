package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// QueryUint64Ptr returns nil when the parameter is absent or malformed
func QueryUint64Ptr(c *gin.Context, key string) *uint64 {
	valueStr := c.Query(key)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParamUint64 extracts an unsigned id from path parameters
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	return strconv.ParseUint(c.Param(key), 10, 64)
}

// Pagination reads page and limit (alias page_size) with bounds applied
func Pagination(c *gin.Context) (int, int) {
	page := QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := QueryInt(c, "limit", QueryInt(c, "page_size", DefaultPageSize))
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
