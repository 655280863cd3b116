package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/citysafe/inspection-backend/internal/config"
	"github.com/citysafe/inspection-backend/internal/database"
	"github.com/citysafe/inspection-backend/internal/handler"
	"github.com/citysafe/inspection-backend/internal/middleware"
	"github.com/citysafe/inspection-backend/internal/migration"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/citysafe/inspection-backend/internal/routes"
	"github.com/citysafe/inspection-backend/internal/scheduler"
	"github.com/citysafe/inspection-backend/internal/service"
	"github.com/citysafe/inspection-backend/internal/ws"
	pkgcache "github.com/citysafe/inspection-backend/pkg/cache"
	"github.com/citysafe/inspection-backend/pkg/jwt"
	pkglogger "github.com/citysafe/inspection-backend/pkg/logger"
	pkgredis "github.com/citysafe/inspection-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           City Inspection Work Order API
// @version         1.0
// @description     巡查工单、督办与消息推送接口
//
// @host            localhost:8000
// @BasePath        /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to %s", db.Dialector.Name())
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional: without it the unread cache, rate limiter and cross-instance fan-out are off
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	// Repositories
	workOrderRepo := repository.NewWorkOrderRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	pushRepo := repository.NewSupervisionPushRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)

	// Services
	clock := service.NewClock(loc)
	sweeper := service.NewOverdueSweeper(workOrderRepo, clock)
	notifier := service.NewMessageNotifier(notificationRepo, cacheService, wsHub)
	workOrderService := service.NewWorkOrderService(
		workOrderRepo, taskRepo, merchantRepo, userRepo,
		sweeper, notifier, clock, cfg.WorkOrder.NumberPrefix,
	)
	supervisionService := service.NewSupervisionService(workOrderRepo, pushRepo, sweeper, notifier, clock)
	taskService := service.NewTaskService(taskRepo, merchantRepo, userRepo, workOrderService)
	notificationService := service.NewNotificationService(notificationRepo, cacheService, wsHub, clock)

	// Background jobs
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(0)
	sched.Register("overdue-sweep", cfg.Overdue.SweepInterval, true, sweeper.Run)
	if cfg.Overdue.MidnightCron != "" {
		if err := sched.RegisterCron("overdue-sweep-midnight", cfg.Overdue.MidnightCron, loc, sweeper.Run); err != nil {
			log.Fatalf("Invalid overdue.midnight_cron: %v", err)
		}
	}
	sched.Register("db-stats", time.Minute, true, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		middleware.SetDBOpenConnections(sqlDB.Stats().OpenConnections)
		return nil
	})
	sched.Start(ctx)

	// Router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws/", "/metrics"})))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler(db, cacheService, sched))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimit := middleware.DefaultRateLimitConfig()
	if cfg.RateLimit.RequestsPerMinute > 0 {
		rateLimit.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	}
	rateLimitClient := redisClient
	if !cfg.RateLimit.Enabled {
		rateLimitClient = nil
	}

	routes.Setup(
		router,
		handler.NewWorkOrderHandler(workOrderService),
		handler.NewSupervisionHandler(supervisionService),
		handler.NewTaskHandler(taskService),
		handler.NewNotificationHandler(notificationService),
		handler.NewWSHandler(wsHub, cfg.CORS.AllowOrigins),
		jwtManager,
		rateLimitClient,
		rateLimit,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	pkglogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("Server shutdown: %v", err)
	}
	sched.Stop()
	wsHub.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func healthHandler(db *gorm.DB, cacheService pkgcache.Service, sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}
		redisStatus := "disabled"
		if cacheService.IsAvailable() {
			redisStatus = "ok"
			if err := cacheService.Ping(c.Request.Context()); err != nil {
				redisStatus = "down"
			}
		}
		c.JSON(status, gin.H{
			"status":  dbStatus,
			"service": "inspection-backend",
			"redis":   redisStatus,
			"jobs":    sched.Jobs(),
			"time":    time.Now().Unix(),
		})
	}
}

func splitAndTrim(s, sep string) []string {
	var parts []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
