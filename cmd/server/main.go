//go:build !mcp

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/salesagent/service/internal/api"
	"github.com/salesagent/service/internal/config"
	"github.com/salesagent/service/internal/llm"
	"github.com/salesagent/service/internal/services"
	"github.com/salesagent/service/internal/store"
	"github.com/salesagent/service/internal/utils"
)

func main() {
	log.Println("启动 Sales-Agent 对话式销售分析服务器...")

	// 日志直接输出到标准输出，云端部署时通过 docker logs 查看业务日志
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 初始化TraceID系统
	utils.InitTraceIDSystem()

	// 加载配置
	cfg := config.Load()
	log.Printf("加载配置: %s", cfg.String())

	// 阻塞式加载数据集：加载完成之前不对外提供服务。
	// 加载失败不致命，聚合层对空数据集有规范的"无数据"结果。
	log.Printf("📂 加载销售数据集: %s", cfg.DatasetPath)
	dataStore := store.NewSalesStore(cfg.DatasetPath)
	if dataStore.Len() == 0 {
		log.Printf("⚠️ 数据集为空，服务将以无数据模式运行")
	}

	// 初始化LLM客户端（未配置API key时为nil，所有回答走本地兜底）
	var llmClient llm.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		llmClient, err = llm.NewGeminiClient(&llm.Config{
			Provider: llm.ProviderGemini,
			APIKey:   cfg.GeminiAPIKey,
			BaseURL:  cfg.GeminiAPIURL,
			Model:    cfg.GeminiModel,
			Timeout:  cfg.LLMTimeout,
		})
		if err != nil {
			log.Printf("警告: 创建Gemini客户端失败: %v，将使用本地兜底回答", err)
		} else {
			log.Printf("✅ Gemini客户端就绪: %s", cfg.GeminiModel)
		}
	} else {
		log.Printf("警告: GEMINI_API_KEY 未设置，所有回答将使用本地兜底")
	}

	// 组装服务
	classifier := services.NewQueryClassifier()
	salesService := services.NewSalesService(dataStore)
	analyticsService := services.NewAnalyticsService(dataStore, salesService)
	agentService := services.NewAgentService(classifier, salesService, analyticsService, llmClient, cfg)

	// 设置Gin模式
	if cfg.GinMode == "debug" || cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin路由器
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(utils.TraceIDMiddleware())
	router.Use(api.SecurityHeadersMiddleware())

	// 配置CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Trace-ID"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "X-Trace-ID"}
	corsConfig.MaxAge = 24 * time.Hour
	router.Use(cors.New(corsConfig))

	// 创建API处理器并注册路由
	handler := api.NewHandler(agentService, dataStore, cfg)
	handler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HTTPServerPort)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  2 * time.Minute, // 支持长时间LLM调用
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  5 * time.Minute,
	}

	// 优雅关闭处理
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("正在关闭服务器...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("服务器关闭时出错: %v", err)
		}
		log.Println("服务器已关闭")
	}()

	log.Printf(`
🚀 Conversational AI Sales Analytics Server
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
✨ Status    : Running
🌐 URL       : http://%s
📊 Records   : %d
🔒 CORS      : Configured for production
📅 Started   : %s
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━`,
		addr, dataStore.Len(), time.Now().Format(time.RFC3339))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP服务器启动失败: %v", err)
	}
}
