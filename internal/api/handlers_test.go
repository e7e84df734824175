package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/services"
	"github.com/salesagent/service/internal/store"
)

func newTestRouter() (*gin.Engine, *store.SalesStore) {
	gin.SetMode(gin.TestMode)

	s := store.NewSalesStoreFromRecords([]models.SalesRecord{
		{OrderDate: "1/1/2016", State: "Texas", City: "Austin", Region: "Central", Category: "Furniture", ProductName: "Bookcase", Sales: "1,000"},
		{OrderDate: "2/1/2016", State: "California", City: "Los Angeles", Region: "West", Category: "Technology", ProductName: "Phone", Sales: "500"},
	})
	sales := services.NewSalesService(s)
	// llmClient为nil：对话走本地兜底回答，测试不依赖外部端点
	agent := services.NewAgentService(services.NewQueryClassifier(), sales, services.NewAnalyticsService(s, sales), nil, &config.Config{ServiceName: "sales-agent"})

	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	NewHandler(agent, s, &config.Config{ServiceName: "sales-agent"}).RegisterRoutes(router)
	return router, s
}

func postChat(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// TestHandleChatMissingQuery 缺query回400
func TestHandleChatMissingQuery(t *testing.T) {
	router, _ := newTestRouter()

	for _, body := range []string{`{}`, `{"query":""}`, `not json`} {
		w := postChat(t, router, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body=%q 应回400, 得到%d", body, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] != "Query is required" {
			t.Errorf("错误文案不符: %s", w.Body.String())
		}
	}
}

// TestHandleChatFallbackAnswer 无LLM客户端时走兜底，仍回200
func TestHandleChatFallbackAnswer(t *testing.T) {
	router, _ := newTestRouter()

	w := postChat(t, router, `{"query":"show me all sales data"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("应回200, 得到%d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Answer         string                 `json:"answer"`
		DashboardData  map[string]interface{} `json:"dashboardData"`
		FunctionCalled interface{}            `json:"functionCalled"`
		IsOffTopic     bool                   `json:"isOffTopic"`
		Suggestions    []string               `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}

	if !strings.HasPrefix(resp.Answer, "I found sales data with $1,500 in total sales!") {
		t.Errorf("兜底回答错误: %q", resp.Answer)
	}
	if resp.FunctionCalled != "getSalesData" {
		t.Errorf("函数名错误: %v", resp.FunctionCalled)
	}
	if resp.IsOffTopic {
		t.Error("销售查询不应标记为跑题")
	}
	if resp.DashboardData == nil {
		t.Fatal("应携带仪表盘数据")
	}
	summary, ok := resp.DashboardData["summary"].(map[string]interface{})
	if !ok || summary["totalSales"].(float64) != 1500 {
		t.Errorf("仪表盘汇总错误: %v", resp.DashboardData["summary"])
	}
	if len(resp.Suggestions) == 0 {
		t.Error("应携带后续建议")
	}
}

// TestHandleChatOffTopic 跑题查询：200、标记、无仪表盘数据
func TestHandleChatOffTopic(t *testing.T) {
	router, _ := newTestRouter()

	w := postChat(t, router, `{"query":"What is the weather today?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("跑题也应回200, 得到%d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp["isOffTopic"] != true {
		t.Error("应标记为跑题")
	}
	if resp["dashboardData"] != nil {
		t.Errorf("跑题响应不应携带仪表盘数据: %v", resp["dashboardData"])
	}
	suggestions, ok := resp["suggestions"].([]interface{})
	if !ok || len(suggestions) != 5 {
		t.Errorf("跑题响应应有5条固定建议: %v", resp["suggestions"])
	}
}

// TestHandleChatWithHistory 历史参数合法时正常处理
func TestHandleChatWithHistory(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"query":"show texas sales","chatHistory":[{"role":"user","content":"hello"},{"role":"assistant","parts":[{"text":"hi"}]}]}`
	w := postChat(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("应回200, 得到%d: %s", w.Code, w.Body.String())
	}
}

// TestHandleHealth 健康检查
func TestHandleHealth(t *testing.T) {
	router, s := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("应回200, 得到%d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "healthy" {
		t.Errorf("状态错误: %v", resp["status"])
	}
	if int(resp["records"].(float64)) != s.Len() {
		t.Errorf("记录数错误: %v", resp["records"])
	}
}

// TestHandleServiceInfo 服务信息
func TestHandleServiceInfo(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("应回200, 得到%d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["service"] != "sales-agent" {
		t.Errorf("服务名错误: %v", resp["service"])
	}
}

// TestSecurityHeaders 安全响应头中间件
func TestSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("缺少X-Content-Type-Options头")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("缺少X-Frame-Options头")
	}
}
