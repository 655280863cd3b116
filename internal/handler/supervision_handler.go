package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/internal/service"
	"github.com/citysafe/inspection-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// SupervisionHandler handles the supervision queue and pushes
type SupervisionHandler struct {
	service *service.SupervisionService
}

// NewSupervisionHandler creates a new SupervisionHandler
func NewSupervisionHandler(service *service.SupervisionService) *SupervisionHandler {
	return &SupervisionHandler{service: service}
}

// Queue godoc
// @Summary      督办工单列表
// @Description  已逾期或已督办且未完成的工单，按截止日期倒序
// @Tags         supervision
// @Produce      json
// @Security     BearerAuth
// @Param        overdue_hours  query  int     false  "最少逾期小时数"
// @Param        hazard_level   query  string  false  "隐患等级"
// @Param        status         query  int     false  "状态"
// @Success      200  {object}  common.APIResponse{data=[]domain.SupervisionItem}
// @Router       /supervision/workorders [get]
func (h *SupervisionHandler) Queue(c *gin.Context) {
	q := service.SupervisionQuery{HazardLevel: domain.HazardLevel(c.Query("hazard_level"))}
	q.Page, q.Limit = ginutil.Pagination(c)

	if v := c.Query("overdue_hours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 0 {
			badRequest(c, "逾期小时数格式错误", nil)
			return
		}
		q.OverdueHours = &hours
	}
	if v := c.Query("status"); v != "" {
		s, err := domain.ParseWorkOrderStatus(v)
		if err != nil {
			badRequest(c, "状态参数错误", err)
			return
		}
		q.Status = &s
	}

	items, total, err := h.service.Queue(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "查询督办工单失败")
		return
	}
	common.SuccessWithMeta(c, items, common.NewMeta(q.Page, q.Limit, total))
}

// BatchPush godoc
// @Summary      批量推送督办通知
// @Tags         supervision
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.BatchPushRequest  true  "推送内容"
// @Success      200  {object}  common.APIResponse{data=domain.PushOutcome}
// @Router       /supervision/batch-push [post]
func (h *SupervisionHandler) BatchPush(c *gin.Context) {
	var req domain.BatchPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}

	out, err := h.service.BatchPush(c.Request.Context(), middleware.GetUserID(c), &req)
	switch {
	case errors.Is(err, common.ErrEmptyIDs):
		common.ErrorResponse(c, http.StatusBadRequest, "请选择要推送的工单", nil)
	case errors.Is(err, common.ErrWorkOrderNotFound):
		common.ErrorResponse(c, http.StatusBadRequest, "工单不存在", nil)
	case err != nil:
		respondError(c, err, "推送失败")
	default:
		common.SuccessMessage(c, "推送完成", out)
	}
}

// History handles GET /api/supervision/history
func (h *SupervisionHandler) History(c *gin.Context) {
	f := domain.PushHistoryFilter{
		PushStatus: domain.PushStatus(c.Query("push_status")),
		PushMethod: domain.PushMethod(c.Query("push_method")),
		Search:     c.Query("search"),
	}
	f.Page, f.Limit = ginutil.Pagination(c)

	items, total, err := h.service.History(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "查询推送记录失败")
		return
	}
	common.SuccessWithMeta(c, items, common.NewMeta(f.Page, f.Limit, total))
}
