package services

import (
	"context"
	"fmt"
	"log"

	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/llm"
	"github.com/salesagent/service/internal/models"
)

// AgentService 对话式销售分析的编排入口：
// 分类 → 聚合 → 渲染上下文 → 外部LLM生成 → 失败时本地兜底。
type AgentService struct {
	classifier *QueryClassifier
	sales      *SalesService
	analytics  *AnalyticsService
	llmClient  llm.Client
	cfg        *config.Config
}

// NewAgentService 创建编排服务。llmClient可为nil（未配置API key），
// 此时所有请求都走本地兜底回答。
func NewAgentService(classifier *QueryClassifier, sales *SalesService, analytics *AnalyticsService, llmClient llm.Client, cfg *config.Config) *AgentService {
	return &AgentService{
		classifier: classifier,
		sales:      sales,
		analytics:  analytics,
		llmClient:  llmClient,
		cfg:        cfg,
	}
}

// Classifier 暴露分类器（MCP模式与测试用）
func (s *AgentService) Classifier() *QueryClassifier {
	return s.classifier
}

// Ask 处理一次对话请求。除参数校验外不返回错误：
// 外部调用失败一律降级为本地合成的回答，HTTP层始终回200。
func (s *AgentService) Ask(ctx context.Context, query string, chatHistory []models.ChatMessage) *models.ChatResponse {
	intent := s.classifier.Analyze(query)

	// 跑题短路：不做聚合，不碰外部端点
	if intent.IsOffTopic {
		log.Printf("🚫 跑题查询，短路返回: %q", query)
		return &models.ChatResponse{
			Answer:         OffTopicAnswer,
			DashboardData:  nil,
			FunctionCalled: nil,
			IsOffTopic:     true,
			Suggestions:    offTopicSuggestions,
		}
	}

	functionResult := s.dispatch(intent)
	log.Printf("🎯 意图: %s", intent.FunctionName)

	analysisContext := BuildAnalysisContext(functionResult, intent)
	suggestions := GenerateSmartSuggestions(query, intent)

	answer, err := s.generate(ctx, query, analysisContext, chatHistory)
	if err != nil {
		// 外部调用失败：记录后用新算的基础聚合合成回答，错误不外露
		log.Printf("❌ 外部生成失败，走本地兜底: %v", err)
		fallbackData := s.sales.GetSalesData(intent.BaseFilter())
		return &models.ChatResponse{
			Answer: fmt.Sprintf("I found sales data with $%s in total sales! Check out the dashboard for detailed visualizations.",
				formatInt(fallbackData.Summary.TotalSales)),
			DashboardData:  fallbackData,
			FunctionCalled: intent.FunctionName,
			Suggestions:    suggestions,
		}
	}

	return &models.ChatResponse{
		Answer:         answer,
		DashboardData:  functionResult,
		FunctionCalled: intent.FunctionName,
		Query:          query,
		Suggestions:    suggestions,
	}
}

// dispatch 按函数名分发到对应的聚合入口
func (s *AgentService) dispatch(intent models.Intent) interface{} {
	switch intent.FunctionName {
	case models.FuncGetSalesData:
		filters := models.Filter{}
		if intent.SalesData != nil {
			filters = intent.SalesData.Filters
		}
		return s.sales.GetSalesData(filters)
	case models.FuncGetProductInsights:
		params := models.ProductInsightParams{}
		if intent.Product != nil {
			params = *intent.Product
		}
		return s.analytics.GetProductInsights(params)
	case models.FuncGetSalesAnalytics:
		params := models.AnalyticsParams{}
		if intent.Analytics != nil {
			params = *intent.Analytics
		}
		return s.analytics.GetSalesAnalytics(params)
	}
	return nil
}

// generate 调用外部文本生成端点
func (s *AgentService) generate(ctx context.Context, query, analysisContext string, chatHistory []models.ChatMessage) (string, error) {
	if s.llmClient == nil {
		return "", fmt.Errorf("llm client not configured")
	}

	historyTurns := 3
	if s.cfg != nil && s.cfg.ChatHistoryTurns > 0 {
		historyTurns = s.cfg.ChatHistoryTurns
	}

	prompt := llm.BuildConversationPrompt(query, analysisContext, chatHistory, historyTurns)
	resp, err := s.llmClient.Complete(ctx, &llm.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
