package main

import (
	"context"
	"flag"
	"log"

	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/esearch"
	"github.com/lingmind/lingmind-go/pkg/logger"
	"go.uber.org/zap"
)

// bulkBatchSize 单次批量写入的记录数
const bulkBatchSize = 500

func main() {
	configPath := flag.String("config", "configs/search-server.yaml", "配置文件路径")
	dataFile := flag.String("file", "", "QA 数据文件（JSONL，每行 {question, answer, county}）")
	flag.Parse()

	if *dataFile == "" {
		log.Fatal("必须指定 -file 参数")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	records, err := esearch.LoadRecords(*dataFile)
	if err != nil {
		zapLogger.Fatal("加载数据文件失败", zap.Error(err))
	}

	zapLogger.Info("开始导入问答数据",
		zap.String("file", *dataFile),
		zap.String("index", cfg.Elastic.Index),
		zap.Int("records", len(records)))

	ctx := context.Background()
	qadb := esearch.NewQaDB(cfg.Elastic, zapLogger)

	if err := qadb.CreateIndex(ctx); err != nil {
		zapLogger.Fatal("创建索引失败", zap.Error(err))
	}

	for start := 0; start < len(records); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(records) {
			end = len(records)
		}

		if err := qadb.BulkIndex(ctx, records[start:end]); err != nil {
			zapLogger.Fatal("批量写入失败",
				zap.Int("start", start),
				zap.Error(err))
		}

		zapLogger.Info("写入进度", zap.Int("done", end), zap.Int("total", len(records)))
	}

	zapLogger.Info("问答数据导入完成", zap.Int("records", len(records)))
}
