package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/esearch"
	"github.com/lingmind/lingmind-go/internal/handler"
	"github.com/lingmind/lingmind-go/internal/middleware"
	"github.com/lingmind/lingmind-go/internal/vectorstore"
	"github.com/lingmind/lingmind-go/pkg/logger"
	"go.uber.org/zap"
)

// embeddingBatchSize 向量化批量大小
const embeddingBatchSize = 16

func main() {
	configPath := flag.String("config", "configs/search-server.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("search-server 服务启动中...",
		zap.String("elastic", cfg.Elastic.Addr),
		zap.String("index", cfg.Elastic.Index))

	// 初始化问答库
	qadb := esearch.NewQaDB(cfg.Elastic, zapLogger)

	// 可选：加载内存向量库
	var vectorStore *vectorstore.MemoryVectorStore
	var embeddingClient *client.EmbeddingClient
	if cfg.Vector.DataFile != "" {
		embeddingClient = client.NewEmbeddingClient(cfg.LLM, cfg.Vector.EmbeddingModel, zapLogger)
		vectorStore = vectorstore.NewMemoryVectorStore(zapLogger)
		if err := loadVectorStore(cfg, embeddingClient, vectorStore, zapLogger); err != nil {
			zapLogger.Fatal("加载向量库失败", zap.Error(err))
		}
	}

	searchHandler := handler.NewSearchHandler(qadb, vectorStore, embeddingClient, cfg.Vector, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS))

	r.POST("/search", searchHandler.Search)
	r.GET("/similar", searchHandler.Similar)
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": cfg.Server.Name})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("search-server 服务启动成功", zap.String("addr", addr))

	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("服务启动失败", zap.Error(err))
	}
}

// loadVectorStore 把 QA 数据文件加载进内存向量库。
// 每条记录按 答案 / 问题 / 答案+问题 三种投影分别向量化入库。
func loadVectorStore(cfg *config.Config, embeddingClient *client.EmbeddingClient, store *vectorstore.MemoryVectorStore, zapLogger *zap.Logger) error {
	records, err := esearch.LoadRecords(cfg.Vector.DataFile)
	if err != nil {
		return err
	}

	zapLogger.Info("开始加载向量库",
		zap.String("file", cfg.Vector.DataFile),
		zap.Int("records", len(records)))

	ctx := context.Background()
	var docs []vectorstore.Document
	for i, record := range records {
		docs = append(docs, vectorstore.Projections(fmt.Sprintf("%d", i), record)...)
	}

	for start := 0; start < len(docs); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}

		vectors, err := embeddingClient.GetEmbeddings(ctx, texts)
		if err != nil {
			return fmt.Errorf("向量化失败: %w", err)
		}

		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if err := store.AddBatch(batch); err != nil {
			return err
		}
	}

	zapLogger.Info("向量库加载完成", zap.Int("documents", store.Count()))
	return nil
}
