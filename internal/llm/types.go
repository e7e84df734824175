package llm

import (
	"context"
	"time"
)

// =============================================================================
// 核心类型定义
// =============================================================================

// Provider LLM提供商类型
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// Request 统一的LLM请求结构
type Request struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// Response 统一的LLM响应结构
type Response struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Provider Provider      `json:"provider"`
	Duration time.Duration `json:"duration"`
}

// LLMError 带提供商信息的错误类型。
// 请求链路上的调用方不向外传播它，统一降级为本地兜底回答。
type LLMError struct {
	Provider  Provider `json:"provider"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Retryable bool     `json:"retryable"`
}

func (e *LLMError) Error() string {
	return e.Message
}

// Config LLM客户端配置
type Config struct {
	Provider Provider      `json:"provider"`
	APIKey   string        `json:"api_key"`
	BaseURL  string        `json:"base_url"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout"` // 0表示使用平台默认
}

// Client 核心LLM客户端接口
type Client interface {
	// 单次完成
	Complete(ctx context.Context, req *Request) (*Response, error)

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 获取提供商信息
	GetProvider() Provider

	// 获取模型名称
	GetModel() string
}
