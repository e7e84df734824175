package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// =============================================================================
// Gemini客户端实现
// =============================================================================

// GeminiClient Google Gemini适配器
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// geminiRequest Gemini generateContent 请求格式
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse Gemini响应格式
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

// geminiErrorResponse Gemini错误响应
type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient 创建Gemini客户端
func NewGeminiClient(config *Config) (Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1"
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	// 超时默认不覆盖，单次尽力调用，失败由上层兜底
	return &GeminiClient{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Complete 完成对话
func (gc *GeminiClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	log.Printf("🤖 [Gemini] 开始处理请求, 提示词长度: %d 字符", len(req.Prompt))

	geminiReq := &geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}

	resp, err := gc.sendRequest(ctx, req, geminiReq)
	if err != nil {
		log.Printf("❌ [Gemini] 请求失败: %v", err)
		return nil, err
	}

	content := ""
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		content = resp.Candidates[0].Content.Parts[0].Text
	}
	if content == "" {
		// 响应形态不符合预期也按错误处理，交给上层降级
		return nil, &LLMError{
			Provider: ProviderGemini,
			Code:     "empty_response",
			Message:  "gemini returned no candidates",
		}
	}

	log.Printf("✅ [Gemini] 处理完成, 耗时=%v, 响应长度=%d 字符", time.Since(startTime), len(content))

	return &Response{
		Content:  content,
		Model:    gc.model,
		Provider: ProviderGemini,
		Duration: time.Since(startTime),
	}, nil
}

// HealthCheck 健康检查
func (gc *GeminiClient) HealthCheck(ctx context.Context) error {
	_, err := gc.Complete(ctx, &Request{Prompt: "Hello"})
	return err
}

// GetProvider 获取提供商信息
func (gc *GeminiClient) GetProvider() Provider {
	return ProviderGemini
}

// GetModel 获取模型名称
func (gc *GeminiClient) GetModel() string {
	return gc.model
}

// sendRequest 发送HTTP请求
func (gc *GeminiClient) sendRequest(ctx context.Context, req *Request, body *geminiRequest) (*geminiResponse, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	model := req.Model
	if model == "" {
		model = gc.model
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", gc.baseURL, model, gc.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := gc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var errorResp geminiErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, &LLMError{
				Provider:  ProviderGemini,
				Code:      errorResp.Error.Status,
				Message:   errorResp.Error.Message,
				Retryable: httpResp.StatusCode >= 500,
			}
		}
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &resp, nil
}
