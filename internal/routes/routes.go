package routes

import (
	"github.com/citysafe/inspection-backend/internal/handler"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	workOrderHandler *handler.WorkOrderHandler,
	supervisionHandler *handler.SupervisionHandler,
	taskHandler *handler.TaskHandler,
	notificationHandler *handler.NotificationHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	rateLimit middleware.RateLimitConfig,
) {
	api := router.Group("/api", middleware.JWTAuth(jwtManager), middleware.RateLimit(redisClient, rateLimit))

	// Work orders (static segments before /:id)
	workorders := api.Group("/workorders")
	workorders.GET("", workOrderHandler.List)
	workorders.POST("", workOrderHandler.Create)
	workorders.GET("/transferred", workOrderHandler.ListTransferred)
	workorders.POST("/batch-supervise", workOrderHandler.BatchSupervise)
	workorders.GET("/no/:workorder_no", workOrderHandler.GetByNo)
	workorders.GET("/no/:workorder_no/submissions", workOrderHandler.ListSubmissionsByNo)
	workorders.GET("/:id", workOrderHandler.Get)
	workorders.PUT("/:id", workOrderHandler.Update)
	workorders.POST("/:id/complete", workOrderHandler.Complete)
	workorders.POST("/:id/supervise", workOrderHandler.Supervise)
	workorders.POST("/:id/transfer", workOrderHandler.Transfer)
	workorders.GET("/:id/submissions", workOrderHandler.ListSubmissions)
	workorders.POST("/:id/submissions", workOrderHandler.Submit)

	// Supervision
	supervision := api.Group("/supervision")
	supervision.GET("/workorders", supervisionHandler.Queue)
	supervision.POST("/batch-push", supervisionHandler.BatchPush)
	supervision.GET("/history", supervisionHandler.History)

	// Tasks
	tasks := api.Group("/tasks")
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.GET("/:id/workorders", taskHandler.ListWorkOrders)

	// Notifications
	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.GetList)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
	notifications.POST("/:id/read", notificationHandler.MarkAsRead)

	// WebSocket (token may come from the query string on upgrade)
	router.GET("/ws/notifications", middleware.JWTAuth(jwtManager), wsHandler.Connect)
}
