package handler

import (
	"strconv"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/internal/service"
	"github.com/citysafe/inspection-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	summary, err := h.service.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "查询未读消息数失败")
		return
	}
	common.SuccessResponse(c, summary)
}

// GetList handles GET /api/notifications.
// last_check_time (unix seconds) limits the result to newer messages.
func (h *NotificationHandler) GetList(c *gin.Context) {
	var since *time.Time
	if v := c.Query("last_check_time"); v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(c, "last_check_time 格式错误", err)
			return
		}
		t := time.Unix(sec, 0)
		since = &t
	}

	page, limit := ginutil.Pagination(c)
	items, total, err := h.service.List(c.Request.Context(), middleware.GetUserID(c), since, page, limit)
	if err != nil {
		respondError(c, err, "查询消息失败")
		return
	}
	common.SuccessWithMeta(c, items, common.NewMeta(page, limit, total))
}

// MarkAsRead handles POST /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err, "标记已读失败")
		return
	}
	common.SuccessResponse(c, gin.H{"id": id})
}

// MarkAllAsRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "全部标记已读失败")
		return
	}
	common.SuccessResponse(c, gin.H{"count": n})
}
