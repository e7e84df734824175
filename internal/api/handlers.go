package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/services"
	"github.com/salesagent/service/internal/store"
)

// Handler API处理器
type Handler struct {
	agent     *services.AgentService
	dataStore *store.SalesStore
	config    *config.Config
	startTime time.Time
}

// NewHandler 创建新的API处理器
func NewHandler(agent *services.AgentService, dataStore *store.SalesStore, cfg *config.Config) *Handler {
	return &Handler{
		agent:     agent,
		dataStore: dataStore,
		config:    cfg,
		startTime: time.Now(),
	}
}

// RegisterRoutes 注册全部路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/chat", h.HandleChat)
	router.GET("/", h.HandleServiceInfo)
	router.GET("/health", h.HandleHealth)
	router.GET("/ws", h.HandleWebSocket)
	router.GET("/ws/status", h.HandleWebSocketStatus)
}

// SecurityHeadersMiddleware 补充安全响应头
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// HandleChat 对话入口。缺query回400，其余情况一律200：
// 外部生成失败时AgentService内部已降级为本地兜底回答。
func (h *Handler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	log.Printf("💬 收到对话请求: %q (历史%d轮)", req.Query, len(req.ChatHistory))

	resp := h.agent.Ask(c.Request.Context(), req.Query, req.ChatHistory)
	c.JSON(http.StatusOK, resp)
}

// HandleServiceInfo 服务信息
func (h *Handler) HandleServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     h.config.ServiceName,
		"version":     "1.0.0",
		"status":      "running",
		"timestamp":   time.Now().Format(time.RFC3339),
		"description": "Conversational AI Sales Analytics Server",
		"dataset": gin.H{
			"records": h.dataStore.Len(),
		},
		"endpoints": gin.H{
			"chat":   "/chat",
			"health": "/health",
			"ws":     "/ws",
		},
	})
}

// HandleHealth 健康检查
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"uptime":  time.Since(h.startTime).String(),
		"records": h.dataStore.Len(),
		"websocket": gin.H{
			"enabled":     true,
			"connections": services.GlobalWSManager.Count(),
		},
	})
}
