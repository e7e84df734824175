package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	// 服务配置
	ServiceName string
	Host        string // 服务监听地址
	GinMode     string // Gin运行模式
	Debug       bool

	// 服务器端口配置
	HTTPServerPort string // HTTP服务端口

	// 数据集配置
	DatasetPath string // 销售数据CSV文件路径（启动时一次性加载）

	// Gemini文本生成配置
	GeminiAPIURL string
	GeminiAPIKey string
	GeminiModel  string

	// LLM调用配置
	LLMTimeout       time.Duration // 外部调用超时（0表示使用平台默认）
	ChatHistoryTurns int           // 拼入提示词的历史对话轮数
}

// Load 从环境变量加载配置
func Load() *Config {
	// 尝试加载.env文件，优先尝试config目录，然后兼容根目录
	envPaths := []string{
		"config/.env",
		".env",
	}

	loaded := false
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				log.Printf("成功加载.env文件: %s", path)
				loaded = true
				break
			}
		}
	}

	if !loaded {
		log.Printf("警告: 未找到.env文件，尝试使用系统环境变量")
	}

	config := &Config{
		// 服务配置默认值
		ServiceName: getEnv("SERVICE_NAME", "sales-agent"),
		Host:        getEnv("HOST", "0.0.0.0"),
		GinMode:     getEnv("GIN_MODE", "release"),
		Debug:       getEnvAsBool("DEBUG", false),

		// 端口配置：优先HTTP_SERVER_PORT，兼容PORT
		HTTPServerPort: getEnv("HTTP_SERVER_PORT", getEnv("PORT", "5001")),

		// 数据集配置
		DatasetPath: getEnv("DATASET_PATH", "data/train.csv"),

		// Gemini配置
		GeminiAPIURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// LLM调用配置
		LLMTimeout:       getEnvAsDuration("LLM_TIMEOUT", 0),
		ChatHistoryTurns: getEnvAsInt("CHAT_HISTORY_TURNS", 3),
	}

	return config
}

// String 返回配置的字符串表示（密钥做掩码处理）
func (c *Config) String() string {
	return fmt.Sprintf(
		"服务名称: %s, 监听地址: %s:%s, 数据集: %s, Gemini模型: %s, GeminiKey: %s, 历史轮数: %d",
		c.ServiceName, c.Host, c.HTTPServerPort, c.DatasetPath,
		c.GeminiModel, maskString(c.GeminiAPIKey), c.ChatHistoryTurns,
	)
}

// 从环境变量获取字符串值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// 从环境变量获取整数值
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取布尔值
func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取时间值
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 掩码字符串，用于日志输出安全
func maskString(input string) string {
	if len(input) <= 8 {
		return "***"
	}
	return input[:4] + "..." + input[len(input)-4:]
}
