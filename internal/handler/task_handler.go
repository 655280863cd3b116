package handler

import (
	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/internal/service"
	"github.com/citysafe/inspection-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles inspection task requests
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	f := domain.TaskFilter{
		Name:       c.Query("name"),
		MerchantID: ginutil.QueryUint64Ptr(c, "merchant_id"),
	}
	f.Page, f.Limit = ginutil.Pagination(c)
	if v := c.Query("cycle"); v != "" {
		cycle, err := domain.ParseTaskCycle(v)
		if err != nil {
			badRequest(c, "周期参数错误", err)
			return
		}
		f.Cycle = cycle
	}
	if v := c.Query("status"); v != "" {
		n := domain.TaskStatus(ginutil.QueryInt(c, "status", -1))
		if !n.Valid() {
			badRequest(c, "状态参数错误", nil)
			return
		}
		f.Status = &n
	}

	tasks, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "查询任务失败")
		return
	}
	common.SuccessWithMeta(c, tasks, common.NewMeta(f.Page, f.Limit, total))
}

// Create handles POST /api/tasks
// @Summary      创建检查任务
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.CreateTaskRequest  true  "任务"
// @Success      201  {object}  common.APIResponse{data=domain.TaskView}
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req domain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误", err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err, "创建任务失败")
		return
	}
	common.Created(c, task)
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询任务失败")
		return
	}
	common.SuccessResponse(c, task)
}

// ListWorkOrders handles GET /api/tasks/:id/workorders
func (h *TaskHandler) ListWorkOrders(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, limit := ginutil.Pagination(c)
	orders, total, err := h.service.ListWorkOrders(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err, "查询任务工单失败")
		return
	}
	common.SuccessWithMeta(c, orders, common.NewMeta(page, limit, total))
}
