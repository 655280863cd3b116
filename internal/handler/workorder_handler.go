package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/internal/service"
	"github.com/citysafe/inspection-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
)

// WorkOrderHandler handles work order requests
type WorkOrderHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(service *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// parseWorkOrderFilter reads list filters from the query string; bare dates are read in loc
func parseWorkOrderFilter(c *gin.Context, loc *time.Location) (domain.WorkOrderFilter, error) {
	var f domain.WorkOrderFilter
	f.Page, f.Limit = ginutil.Pagination(c)

	if v := c.Query("status"); v != "" {
		s, err := domain.ParseWorkOrderStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if v := c.Query("deadline"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.Deadline = &d
	}
	f.HazardLevel = domain.HazardLevel(c.Query("hazard_level"))
	f.TaskID = ginutil.QueryUint64Ptr(c, "task_id")
	f.MerchantID = ginutil.QueryUint64Ptr(c, "merchant_id")
	f.InspectorID = ginutil.QueryUint64Ptr(c, "inspector_id")
	f.Search = c.Query("search")

	var err error
	if f.ReportTimeAfter, err = queryTime(c, "report_time_after", loc, false); err != nil {
		return f, err
	}
	if f.ReportTimeBefore, err = queryTime(c, "report_time_before", loc, true); err != nil {
		return f, err
	}
	return f, nil
}

// queryTime accepts RFC3339 or any layout jinzhu/now understands ("2024-03-10", "2024-03-10 08:00").
// A bare date used as an upper bound covers the whole day.
func queryTime(c *gin.Context, key string, loc *time.Location, upper bool) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: loc}
	t, err := cfg.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, v)
	}
	if upper && len(v) == len("2006-01-02") {
		t = cfg.With(t).EndOfDay()
	}
	return &t, nil
}

// List godoc
// @Summary      工单列表
// @Tags         workorders
// @Produce      json
// @Security     BearerAuth
// @Param        status        query  int     false  "状态 0待整改 1待复查 2已完成 3已逾期"
// @Param        hazard_level  query  string  false  "隐患等级 high/medium/low"
// @Param        deadline      query  string  false  "截止日期 YYYY-MM-DD"
// @Param        task_id       query  int     false  "任务ID"
// @Param        search        query  string  false  "工单号或商户名称"
// @Param        page          query  int     false  "页码"  default(1)
// @Param        limit         query  int     false  "每页数量"  default(10)
// @Success      200  {object}  common.APIResponse{data=[]domain.WorkOrderView}
// @Router       /workorders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	f, err := parseWorkOrderFilter(c, h.service.Location())
	if err != nil {
		badRequest(c, "查询参数错误", err)
		return
	}
	orders, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "查询工单失败")
		return
	}
	common.SuccessWithMeta(c, orders, common.NewMeta(f.Page, f.Limit, total))
}

// ListTransferred handles GET /api/workorders/transferred
func (h *WorkOrderHandler) ListTransferred(c *gin.Context) {
	f, err := parseWorkOrderFilter(c, h.service.Location())
	if err != nil {
		badRequest(c, "查询参数错误", err)
		return
	}
	orders, total, err := h.service.ListTransferred(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "查询移交工单失败")
		return
	}
	common.SuccessWithMeta(c, orders, common.NewMeta(f.Page, f.Limit, total))
}

// Create godoc
// @Summary      创建工单
// @Description  截止日期必填；工单号自动生成；未指定时检查人取任务负责人，包保责任人取商户责任人
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.CreateWorkOrderRequest  true  "工单"
// @Success      201  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Failure      400  {object}  common.APIResponse
// @Router       /workorders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req domain.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	wo, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err, "创建工单失败")
		return
	}
	common.Created(c, wo)
}

// Get godoc
// @Summary      工单详情
// @Tags         workorders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "工单ID"
// @Success      200  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Failure      404  {object}  common.APIResponse
// @Router       /workorders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	wo, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询工单失败")
		return
	}
	common.SuccessResponse(c, wo)
}

// GetByNo handles GET /api/workorders/no/:workorder_no
func (h *WorkOrderHandler) GetByNo(c *gin.Context) {
	wo, err := h.service.GetByNo(c.Request.Context(), c.Param("workorder_no"))
	if err != nil {
		respondError(c, err, "查询工单失败")
		return
	}
	common.SuccessResponse(c, wo)
}

// Update godoc
// @Summary      修改工单
// @Description  状态、工单号和上报时间不可修改
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                            true  "工单ID"
// @Param        request  body  domain.UpdateWorkOrderRequest  true  "修改内容"
// @Success      200  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Router       /workorders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	wo, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "修改工单失败")
		return
	}
	common.SuccessResponse(c, wo)
}

// Complete godoc
// @Summary      完成工单
// @Tags         workorders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "工单ID"
// @Success      200  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Failure      400  {object}  common.APIResponse  "已完成的工单 (CONFLICT)"
// @Router       /workorders/{id}/complete [post]
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.CompleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "请求格式错误", err)
			return
		}
	}
	wo, err := h.service.Complete(c.Request.Context(), middleware.GetUserID(c), id, req.Remark)
	if err != nil {
		respondError(c, err, "完成工单失败")
		return
	}
	common.SuccessMessage(c, "工单已完成", wo)
}

// Supervise godoc
// @Summary      督办工单
// @Description  工单置为待整改并标记督办，通知检查人、包保责任人和移交人
// @Tags         workorders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "工单ID"
// @Success      200  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Router       /workorders/{id}/supervise [post]
func (h *WorkOrderHandler) Supervise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	wo, err := h.service.Supervise(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "督办失败")
		return
	}
	common.SuccessMessage(c, "督办成功", wo)
}

// BatchSupervise godoc
// @Summary      批量督办
// @Description  不存在的ID被忽略，count 为实际督办数量
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.BatchSuperviseRequest  true  "工单ID列表"
// @Success      200  {object}  common.APIResponse
// @Router       /workorders/batch-supervise [post]
func (h *WorkOrderHandler) BatchSupervise(c *gin.Context) {
	var req domain.BatchSuperviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	count, err := h.service.BatchSupervise(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err, "批量督办失败")
		return
	}
	common.SuccessMessage(c, "批量督办成功", gin.H{"count": count})
}

// Transfer godoc
// @Summary      移交工单
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                     true  "工单ID"
// @Param        request  body  domain.TransferRequest  true  "移交人与备注"
// @Success      200  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Failure      400  {object}  common.APIResponse  "移交人不存在"
// @Router       /workorders/{id}/transfer [post]
func (h *WorkOrderHandler) Transfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	wo, err := h.service.Transfer(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "移交工单失败")
		return
	}
	common.SuccessMessage(c, "移交成功", wo)
}

// Submit godoc
// @Summary      提交整改/复查记录
// @Tags         workorders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                   true  "工单ID"
// @Param        request  body  domain.SubmitRequest  true  "提交内容"
// @Success      201  {object}  common.APIResponse{data=domain.WorkOrderView}
// @Router       /workorders/{id}/submissions [post]
func (h *WorkOrderHandler) Submit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	wo, err := h.service.Submit(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err, "提交失败")
		return
	}
	common.Created(c, wo)
}

// ListSubmissions handles GET /api/workorders/:id/submissions
func (h *WorkOrderHandler) ListSubmissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.service.ListSubmissions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询提交记录失败")
		return
	}
	common.SuccessResponse(c, items)
}

// ListSubmissionsByNo handles GET /api/workorders/no/:workorder_no/submissions
func (h *WorkOrderHandler) ListSubmissionsByNo(c *gin.Context) {
	items, err := h.service.ListSubmissionsByNo(c.Request.Context(), c.Param("workorder_no"))
	if err != nil {
		respondError(c, err, "查询提交记录失败")
		return
	}
	common.SuccessResponse(c, items)
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "无效的ID", nil)
		return 0, false
	}
	return id, true
}
