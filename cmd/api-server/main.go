package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/handler"
	"github.com/lingmind/lingmind-go/internal/middleware"
	"github.com/lingmind/lingmind-go/internal/service"
	"github.com/lingmind/lingmind-go/pkg/logger"
	"github.com/lingmind/lingmind-go/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/api-server.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("api-server 服务启动中...",
		zap.Bool("autoAgent", cfg.Routing.AutoAgent))

	// 初始化 Redis（可选，用作答案缓存）
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("连接 Redis 失败", zap.Error(err))
		}
	}

	// 初始化客户端
	completionClient := client.NewCompletionClient(cfg.LLM, zapLogger)
	searchClient := client.NewSearchClient(cfg.Search.Endpoint, zapLogger)

	// 初始化流程服务
	knowledgeService := service.NewKnowledgeService(searchClient, redisClient, cfg.Search, zapLogger)
	classifierService := service.NewClassifierService(completionClient, cfg.Models.Classifier, zapLogger)
	condenserService := service.NewCondenserService(completionClient, cfg.Models.General, zapLogger)
	formatterService := service.NewFormatterService(completionClient, cfg.Models.Formatter, zapLogger)

	routerService := service.NewRouterService(
		completionClient,
		knowledgeService,
		classifierService,
		condenserService,
		formatterService,
		cfg.Models,
		cfg.Routing,
		zapLogger,
	)

	// 初始化处理器
	chatHandler := handler.NewChatHandler(routerService, zapLogger)
	wsHandler := handler.NewWebSocketHandler(routerService, cfg.Models.QA, zapLogger)

	// 初始化路由
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS))

	r.POST("/demo/chat/completions", chatHandler.ChatCompletions)
	r.GET("/demo/chat/ws", wsHandler.HandleWebSocket)
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": cfg.Server.Name})
	})

	// 启动服务
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("api-server 服务启动成功", zap.String("addr", addr))

	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("服务启动失败", zap.Error(err))
	}
}
