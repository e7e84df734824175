package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/llm"
	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/store"
)

// stubLLMClient 可编程的LLM客户端桩
type stubLLMClient struct {
	content string
	err     error
	prompts []string
}

func (c *stubLLMClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	c.prompts = append(c.prompts, req.Prompt)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Content: c.content, Provider: llm.ProviderGemini}, nil
}

func (c *stubLLMClient) HealthCheck(ctx context.Context) error { return nil }
func (c *stubLLMClient) GetProvider() llm.Provider             { return llm.ProviderGemini }
func (c *stubLLMClient) GetModel() string                      { return "stub" }

func newTestAgent(client llm.Client) *AgentService {
	s := store.NewSalesStoreFromRecords([]models.SalesRecord{
		{OrderDate: "1/1/2016", State: "Texas", City: "Austin", Region: "Central", Category: "Furniture", ProductName: "Bookcase", Sales: "1,000"},
		{OrderDate: "2/1/2016", State: "California", City: "Los Angeles", Region: "West", Category: "Technology", ProductName: "Phone", Sales: "500"},
	})
	sales := NewSalesService(s)
	return NewAgentService(NewQueryClassifier(), sales, NewAnalyticsService(s, sales), client, &config.Config{ChatHistoryTurns: 3})
}

// TestAskOffTopic 跑题查询短路，不携带仪表盘数据
func TestAskOffTopic(t *testing.T) {
	client := &stubLLMClient{content: "should not be called"}
	agent := newTestAgent(client)

	resp := agent.Ask(context.Background(), "What's the weather today?", nil)

	if !resp.IsOffTopic {
		t.Error("应标记为跑题")
	}
	if resp.Answer != OffTopicAnswer {
		t.Errorf("跑题回答文案错误: %q", resp.Answer)
	}
	if resp.DashboardData != nil || resp.FunctionCalled != nil {
		t.Error("跑题响应不应携带仪表盘数据与函数名")
	}
	if len(resp.Suggestions) != 5 {
		t.Errorf("跑题响应应有5条固定建议: %v", resp.Suggestions)
	}
	if len(client.prompts) != 0 {
		t.Error("跑题查询不应调用外部端点")
	}
}

// TestAskSuccess LLM成功时透传生成文本与聚合结果
func TestAskSuccess(t *testing.T) {
	client := &stubLLMClient{content: "Here is your sales summary."}
	agent := newTestAgent(client)

	resp := agent.Ask(context.Background(), "show me all sales data", nil)

	if resp.Answer != "Here is your sales summary." {
		t.Errorf("应透传生成文本: %q", resp.Answer)
	}
	if resp.Query != "show me all sales data" {
		t.Errorf("成功响应应回显查询: %q", resp.Query)
	}
	if resp.IsOffTopic {
		t.Error("销售查询不应标记为跑题")
	}
	if resp.FunctionCalled != models.FuncGetSalesData {
		t.Errorf("函数名错误: %v", resp.FunctionCalled)
	}
	data, ok := resp.DashboardData.(*models.AggregationResult)
	if !ok || data.Summary.TotalSales != 1500 {
		t.Errorf("仪表盘数据错误: %v", resp.DashboardData)
	}
	if len(resp.Suggestions) == 0 {
		t.Error("应生成后续建议")
	}

	// 生成提示词内嵌分析上下文
	if len(client.prompts) != 1 || !strings.Contains(client.prompts[0], "show me all sales data") {
		t.Errorf("提示词应包含原始查询: %v", client.prompts)
	}
}

// TestAskFallbackOnError 外部调用失败时降级为本地合成回答
func TestAskFallbackOnError(t *testing.T) {
	client := &stubLLMClient{err: errors.New("connection refused")}
	agent := newTestAgent(client)

	resp := agent.Ask(context.Background(), "show me all sales data", nil)

	want := "I found sales data with $1,500 in total sales! Check out the dashboard for detailed visualizations."
	if resp.Answer != want {
		t.Errorf("兜底回答错误:\n得到: %q\n期望: %q", resp.Answer, want)
	}
	if resp.Query != "" {
		t.Error("兜底响应不回显查询")
	}
	if resp.FunctionCalled != models.FuncGetSalesData {
		t.Errorf("兜底响应仍携带函数名: %v", resp.FunctionCalled)
	}
	data, ok := resp.DashboardData.(*models.AggregationResult)
	if !ok || data.Summary.TotalSales != 1500 {
		t.Errorf("兜底仪表盘数据错误: %v", resp.DashboardData)
	}
}

// TestAskNilClient 未配置LLM客户端时所有请求走兜底
func TestAskNilClient(t *testing.T) {
	agent := newTestAgent(nil)

	resp := agent.Ask(context.Background(), "show sales for texas", nil)

	if !strings.HasPrefix(resp.Answer, "I found sales data with $") {
		t.Errorf("无客户端时应走兜底: %q", resp.Answer)
	}
	// 兜底聚合沿用意图中的基础过滤条件
	data := resp.DashboardData.(*models.AggregationResult)
	if data.Summary.TotalSales != 1000 {
		t.Errorf("Texas过滤后总额应为1000, 得到%d", data.Summary.TotalSales)
	}
}

// TestAskFallbackProductCategory 产品意图兜底时沿用品类过滤
func TestAskFallbackProductCategory(t *testing.T) {
	agent := newTestAgent(nil)

	// 分类为产品意图（品类Furniture），兜底聚合只统计Furniture
	resp := agent.Ask(context.Background(), "recommendation for furniture items", nil)

	data, ok := resp.DashboardData.(*models.AggregationResult)
	if !ok {
		t.Fatalf("应携带聚合结果: %v", resp.DashboardData)
	}
	if data.Summary.TotalSales != 1000 {
		t.Errorf("Furniture兜底总额应为1000, 得到%d", data.Summary.TotalSales)
	}
	if resp.Answer != "I found sales data with $1,000 in total sales! Check out the dashboard for detailed visualizations." {
		t.Errorf("兜底回答错误: %q", resp.Answer)
	}

	// 建议同样回填品类
	if len(resp.Suggestions) == 0 || resp.Suggestions[0] != "Furniture top products" {
		t.Errorf("品类建议错误: %v", resp.Suggestions)
	}
}

// TestAskChatHistoryInPrompt 会话历史拼入提示词
func TestAskChatHistoryInPrompt(t *testing.T) {
	client := &stubLLMClient{content: "ok"}
	agent := newTestAgent(client)

	history := []models.ChatMessage{
		{Role: "user", Content: "show me texas sales"},
		{Role: "assistant", Content: "Texas is doing great."},
	}
	agent.Ask(context.Background(), "what about california", history)

	if len(client.prompts) != 1 {
		t.Fatalf("应调用一次外部端点: %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "User: show me texas sales") || !strings.Contains(prompt, "Assistant: Texas is doing great.") {
		t.Errorf("提示词应包含会话历史:\n%s", prompt)
	}
}
