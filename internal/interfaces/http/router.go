package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/chatclaim/internal/config"
	"github.com/turtacn/chatclaim/internal/interfaces/http/handlers"
	"github.com/turtacn/chatclaim/internal/interfaces/http/middleware"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine         *gin.Engine
	config         *config.Config
	logger         logger.Logger
	healthHandler  *handlers.HealthHandler
	claimHandler   *handlers.ClaimHandler
	chatHandler    *handlers.ChatHandler
	tracer         trace.Tracer
	metrics        middleware.HTTPMetrics
	metricsHandler http.Handler
	server         *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	claimHandler *handlers.ClaimHandler,
	chatHandler *handlers.ChatHandler,
	tracer trace.Tracer,
	metrics middleware.HTTPMetrics,
	metricsHandler http.Handler,
) *Router {
	// 设置 Gin 模式
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	return &Router{
		engine:         engine,
		config:         cfg,
		logger:         log.WithComponent("Router"),
		healthHandler:  healthHandler,
		claimHandler:   claimHandler,
		chatHandler:    chatHandler,
		tracer:         tracer,
		metrics:        metrics,
		metricsHandler: metricsHandler,
		server: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        engine,
			ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20, // 1MB
		},
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(middleware.ObservabilityMiddleware(r.tracer, r.metrics))
	r.engine.Use(handlers.LoggingMiddleware(r.logger))

	// CORS 配置
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(r.config.Server.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = r.config.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	// Prometheus metrics
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.IsProduction() {
		pprof.Register(r.engine)
	}

	// 聊天转发路由，与聊天后端路径一致
	students := r.engine.Group("/students")
	{
		students.POST("/chat", r.chatHandler.SendMessage)
		students.GET("/chat/history/:studentId", r.chatHandler.GetHistory)
	}

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	{
		claims := v1.Group("/claims")
		{
			claims.POST("/token", r.claimHandler.CreateToken)
			claims.GET("/config", r.claimHandler.GetConfig)
			if !r.config.IsProduction() {
				claims.PUT("/config", r.claimHandler.UpdateConfig)
				claims.DELETE("/cache", r.claimHandler.ClearCache)
			}
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭；调用前需先执行 SetupRoutes
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine returns the gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
