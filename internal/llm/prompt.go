package llm

import (
	"fmt"
	"strings"

	"github.com/salesagent/service/internal/models"
)

// 系统定位文案，拼在提示词最前面
const systemRole = `You are a specialized AI sales analyst. You ONLY help with sales data analysis and business performance. You provide detailed insights for both high and low performers.`

// BuildConversationPrompt 组装发给文本生成端点的单段文本：
// 用户问题 + 渲染后的分析上下文 + 最近historyTurns轮历史对话。
func BuildConversationPrompt(query, analysisContext string, chatHistory []models.ChatMessage, historyTurns int) string {
	recent := chatHistory
	if historyTurns > 0 && len(recent) > historyTurns {
		recent = recent[len(recent)-historyTurns:]
	}

	var history strings.Builder
	for _, msg := range recent {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&history, "%s: %s\n", role, msg.Text())
	}

	return fmt.Sprintf(`%s

User asked: "%s"

Here's the detailed data analysis:
%s

Previous conversation:
%s
Provide a helpful, enthusiastic response about the sales data. Stay focused on business insights and actionable recommendations. Be conversational and highlight key findings. Use the data analysis above to give specific numbers and insights. If this is about poor performance, provide constructive improvement suggestions.`,
		systemRole, query, analysisContext, history.String())
}
