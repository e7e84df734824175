package config

import (
	"testing"
	"time"
)

// TestLoadDefaults 无环境变量时的默认配置
func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServiceName != "sales-agent" {
		t.Errorf("默认服务名错误: %q", cfg.ServiceName)
	}
	if cfg.HTTPServerPort != "5001" {
		t.Errorf("默认端口错误: %q", cfg.HTTPServerPort)
	}
	if cfg.DatasetPath != "data/train.csv" {
		t.Errorf("默认数据集路径错误: %q", cfg.DatasetPath)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("默认模型错误: %q", cfg.GeminiModel)
	}
	if cfg.ChatHistoryTurns != 3 {
		t.Errorf("默认历史轮数错误: %d", cfg.ChatHistoryTurns)
	}
}

// TestLoadOverrides 环境变量覆盖默认值
func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "test-service")
	t.Setenv("HTTP_SERVER_PORT", "8080")
	t.Setenv("GEMINI_API_KEY", "secret-key-12345")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("CHAT_HISTORY_TURNS", "5")

	cfg := Load()

	if cfg.ServiceName != "test-service" {
		t.Errorf("服务名覆盖失败: %q", cfg.ServiceName)
	}
	if cfg.HTTPServerPort != "8080" {
		t.Errorf("端口覆盖失败: %q", cfg.HTTPServerPort)
	}
	if cfg.GeminiAPIKey != "secret-key-12345" {
		t.Errorf("API key覆盖失败: %q", cfg.GeminiAPIKey)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("超时覆盖失败: %v", cfg.LLMTimeout)
	}
	if cfg.ChatHistoryTurns != 5 {
		t.Errorf("历史轮数覆盖失败: %d", cfg.ChatHistoryTurns)
	}
}

// TestLoadPortFallback HTTP_SERVER_PORT缺省时兼容PORT
func TestLoadPortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := Load()
	if cfg.HTTPServerPort != "9090" {
		t.Errorf("PORT兼容失败: %q", cfg.HTTPServerPort)
	}
}

// TestMaskString 密钥掩码
func TestMaskString(t *testing.T) {
	if got := maskString("short"); got != "***" {
		t.Errorf("短密钥应全掩码: %q", got)
	}
	if got := maskString("AIzaSyExample1234"); got != "AIza...1234" {
		t.Errorf("长密钥应保留首尾: %q", got)
	}
}
