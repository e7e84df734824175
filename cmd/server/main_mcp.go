//go:build mcp

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/services"
	"github.com/salesagent/service/internal/store"
)

// MCP模式：把三个聚合函数作为工具暴露给MCP客户端，走stdio协议。
// 不经过LLM，直接返回结构化聚合结果的JSON文本。
func main() {
	cfg := config.Load()
	log.Printf("加载配置: %s", cfg.String())

	log.Printf("📂 加载销售数据集: %s", cfg.DatasetPath)
	dataStore := store.NewSalesStore(cfg.DatasetPath)

	salesService := services.NewSalesService(dataStore)
	analyticsService := services.NewAnalyticsService(dataStore, salesService)

	s := server.NewMCPServer(
		cfg.ServiceName,
		"1.0.0",
	)

	registerMCPTools(s, salesService, analyticsService)

	log.Println("启动 Sales-Agent MCP 服务器 (stdio)...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("MCP服务器运行失败: %v", err)
	}
}

// logToolCall 记录工具调用的详细日志
func logToolCall(name string, args map[string]interface{}, err error, duration time.Duration) {
	argsJSON, jsonErr := json.Marshal(args)
	if jsonErr != nil {
		argsJSON = []byte(fmt.Sprintf("无法序列化请求: %v", jsonErr))
	}
	if err != nil {
		log.Printf("[工具调用: %s] 耗时=%v, 参数=%s, 错误=%v", name, duration, string(argsJSON), err)
		return
	}
	log.Printf("[工具调用: %s] 耗时=%v, 参数=%s", name, duration, string(argsJSON))
}

// stringArg 从工具参数中取字符串值
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// toolResultJSON 把聚合结果序列化为文本工具结果
func toolResultJSON(name string, args map[string]interface{}, result interface{}, startTime time.Time) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(result)
	if err != nil {
		errMsg := fmt.Sprintf("序列化结果失败: %v", err)
		log.Println(errMsg)
		logToolCall(name, args, err, time.Since(startTime))
		return mcp.NewToolResultText(errMsg), nil
	}
	logToolCall(name, args, nil, time.Since(startTime))
	return mcp.NewToolResultText(string(jsonData)), nil
}

// registerMCPTools 注册所有MCP工具到服务器
func registerMCPTools(s *server.MCPServer, salesService *services.SalesService, analyticsService *services.AnalyticsService) {
	// 注册工具：销售数据聚合
	getSalesDataTool := mcp.NewTool("get_sales_data",
		mcp.WithDescription("按州/城市/区域/品类过滤并聚合销售数据"),
		mcp.WithString("state",
			mcp.Description("州过滤（子串匹配，大小写不敏感）"),
		),
		mcp.WithString("city",
			mcp.Description("城市过滤"),
		),
		mcp.WithString("region",
			mcp.Description("区域过滤"),
		),
		mcp.WithString("category",
			mcp.Description("品类过滤"),
		),
	)
	s.AddTool(getSalesDataTool, getSalesDataHandler(salesService))

	// 注册工具：维度分析
	getSalesAnalyticsTool := mcp.NewTool("get_sales_analytics",
		mcp.WithDescription("按分析类型返回趋势/对比/绩效分析"),
		mcp.WithString("analysisType",
			mcp.Required(),
			mcp.Description("分析类型: trends | comparison | performance"),
		),
		mcp.WithString("dimension",
			mcp.Description("分析维度: region | category | time"),
		),
	)
	s.AddTool(getSalesAnalyticsTool, getSalesAnalyticsHandler(analyticsService))

	// 注册工具：产品洞察
	getProductInsightsTool := mcp.NewTool("get_product_insights",
		mcp.WithDescription("产品维度洞察：头部产品、建议或原始分析"),
		mcp.WithString("insightType",
			mcp.Description("洞察类型: top_products | recommendations"),
		),
		mcp.WithString("productName",
			mcp.Description("产品名过滤（子串匹配）"),
		),
		mcp.WithString("category",
			mcp.Description("品类过滤"),
		),
	)
	s.AddTool(getProductInsightsTool, getProductInsightsHandler(analyticsService))
}

func getSalesDataHandler(salesService *services.SalesService) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()
		args := request.Params.Arguments

		result := salesService.GetSalesData(models.Filter{
			State:    stringArg(args, "state"),
			City:     stringArg(args, "city"),
			Region:   stringArg(args, "region"),
			Category: stringArg(args, "category"),
		})

		return toolResultJSON("get_sales_data", args, result, startTime)
	}
}

func getSalesAnalyticsHandler(analyticsService *services.AnalyticsService) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()
		args := request.Params.Arguments

		analysisType, ok := args["analysisType"].(string)
		if !ok || analysisType == "" {
			errMsg := "错误: analysisType必须是非空字符串"
			log.Println(errMsg)
			logToolCall("get_sales_analytics", args, fmt.Errorf(errMsg), time.Since(startTime))
			return mcp.NewToolResultText(errMsg), nil
		}

		result := analyticsService.GetSalesAnalytics(models.AnalyticsParams{
			AnalysisType: analysisType,
			Dimension:    stringArg(args, "dimension"),
		})

		return toolResultJSON("get_sales_analytics", args, result, startTime)
	}
}

func getProductInsightsHandler(analyticsService *services.AnalyticsService) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()
		args := request.Params.Arguments

		result := analyticsService.GetProductInsights(models.ProductInsightParams{
			InsightType: stringArg(args, "insightType"),
			ProductName: stringArg(args, "productName"),
			Category:    stringArg(args, "category"),
		})

		return toolResultJSON("get_product_insights", args, result, startTime)
	}
}
