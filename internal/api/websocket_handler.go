package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/services"
)

// WebSocket升级器
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 允许所有来源的连接（与HTTP层的CORS策略一致）
		return true
	},
}

// HandleWebSocket 处理WebSocket对话连接。
// 每条入站消息与POST /chat同构（{query, chatHistory}），
// 走同一条 分类→聚合→生成→兜底 流水线，回包也是同一个ChatResponse。
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("🔗 [WebSocket] ❌ 升级连接失败: %v", err)
		return
	}

	connectionID := uuid.New().String()
	services.GlobalWSManager.Register(connectionID, conn)

	defer func() {
		services.GlobalWSManager.Unregister(connectionID)
		conn.Close()
	}()

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("🔗 [WebSocket] 连接异常关闭: %s, %v", connectionID, err)
			}
			return
		}

		if req.Query == "" {
			if err := services.GlobalWSManager.SendJSON(connectionID, gin.H{"error": "Query is required"}); err != nil {
				return
			}
			continue
		}

		log.Printf("💬 [WebSocket] 收到对话请求: %q (连接: %s)", req.Query, connectionID)

		resp := h.agent.Ask(c.Request.Context(), req.Query, req.ChatHistory)
		if err := services.GlobalWSManager.SendJSON(connectionID, resp); err != nil {
			log.Printf("🔗 [WebSocket] ❌ 发送响应失败: %s, %v", connectionID, err)
			return
		}
	}
}

// HandleWebSocketStatus 查询当前WebSocket连接状态
func (h *Handler) HandleWebSocketStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"connections": services.GlobalWSManager.Count(),
		"connectionIds": func() []string {
			return services.GlobalWSManager.ConnectionIDs()
		}(),
	})
}
