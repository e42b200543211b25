package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KnowledgeService 知识库问答服务。
// 先查 Redis 缓存，未命中再调检索服务；只有得分达到阈值的命中才可用，
// 低于阈值的结果直接丢弃，不作为弱信号使用。
type KnowledgeService struct {
	searchClient *client.SearchClient
	redisClient  *redis.Client // 可为 nil，此时不启用缓存
	threshold    float64
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewKnowledgeService 创建知识库问答服务
func NewKnowledgeService(searchClient *client.SearchClient, redisClient *redis.Client, cfg config.SearchConfig, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		searchClient: searchClient,
		redisClient:  redisClient,
		threshold:    cfg.Threshold,
		cacheTTL:     time.Duration(cfg.CacheTTLHours) * time.Hour,
		logger:       logger,
	}
}

// FindAnswer 查找高置信的知识库答案，未找到返回 nil
func (s *KnowledgeService) FindAnswer(ctx context.Context, question string) *model.SearchHit {
	if hit := s.fromCache(ctx, question); hit != nil {
		s.logger.Info("命中答案缓存", zap.String("question", question))
		return hit
	}

	hit := s.searchClient.Search(ctx, question)
	if hit == nil {
		return nil
	}

	if hit.Score < s.threshold {
		s.logger.Info("检索得分低于阈值，丢弃",
			zap.Float64("score", hit.Score),
			zap.Float64("threshold", s.threshold))
		return nil
	}

	s.toCache(ctx, question, hit)
	return hit
}

// fromCache 从 Redis 读取缓存的命中结果，缓存不可用视为未命中
func (s *KnowledgeService) fromCache(ctx context.Context, question string) *model.SearchHit {
	if s.redisClient == nil {
		return nil
	}

	data, err := s.redisClient.Get(ctx, cacheKey(question)).Result()
	if err != nil {
		return nil
	}

	var hit model.SearchHit
	if err := json.Unmarshal([]byte(data), &hit); err != nil {
		s.logger.Warn("缓存内容解析失败", zap.Error(err))
		return nil
	}

	return &hit
}

// toCache 将高置信命中写入 Redis，写失败只记日志
func (s *KnowledgeService) toCache(ctx context.Context, question string, hit *model.SearchHit) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(hit)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, cacheKey(question), data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("写入答案缓存失败", zap.Error(err))
	}
}

// cacheKey 生成问题的缓存键
func cacheKey(question string) string {
	return fmt.Sprintf("qa_cache:%x", sha1.Sum([]byte(question)))
}
