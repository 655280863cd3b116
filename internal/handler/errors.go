package handler

import (
	"errors"
	"net/http"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP responses; unknown errors become 500 with fallback
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrAlreadyCompleted):
		common.ConflictResponse(c, "工单已完成，不能重复完成", err)
	case errors.Is(err, common.ErrWorkOrderNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "工单不存在", nil)
	case errors.Is(err, common.ErrTaskNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "任务不存在", nil)
	case errors.Is(err, common.ErrMerchantNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "商户不存在", nil)
	case errors.Is(err, common.ErrUserNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "用户不存在", nil)
	case errors.Is(err, common.ErrNotificationNotFound), errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "记录不存在", nil)
	case errors.Is(err, common.ErrTransferPersonNotFound):
		common.ErrorResponse(c, http.StatusBadRequest, "移交人不存在", nil)
	case errors.Is(err, common.ErrDeadlineRequired):
		common.ErrorResponse(c, http.StatusBadRequest, "截止时间不能为空", nil)
	case errors.Is(err, common.ErrEmptyIDs):
		common.ErrorResponse(c, http.StatusBadRequest, "请选择要督办的工单", nil)
	case errors.Is(err, common.ErrInvalidTimeRange):
		common.ErrorResponse(c, http.StatusBadRequest, "开始时间必须早于结束时间", nil)
	case errors.Is(err, common.ErrSequenceExhausted):
		common.ErrorResponse(c, http.StatusBadRequest, "今日工单编号已用完", nil)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "参数错误", err)
	default:
		_ = c.Error(err)
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, nil)
	}
}

func badRequest(c *gin.Context, message string, err error) {
	common.ErrorResponse(c, http.StatusBadRequest, message, err)
}
