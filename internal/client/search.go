package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// SearchClient 知识库检索客户端。
// 传输失败、响应格式错误和检索无命中统一返回 nil：
// 拿不到高置信命中时总是回落到模型问答，检索服务不可用不阻断流程。
type SearchClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSearchClient 创建知识库检索客户端
func NewSearchClient(endpoint string, logger *zap.Logger) *SearchClient {
	return &SearchClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Search 检索最相近的知识库问答，无命中返回 nil
func (c *SearchClient) Search(ctx context.Context, question string) *model.SearchHit {
	form := url.Values{}
	form.Set("question", question)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/search", strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Warn("构建检索请求失败", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("检索服务不可用", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("检索服务返回错误", zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("读取检索响应失败", zap.Error(err))
		return nil
	}

	// 空响应体表示无命中
	if len(body) == 0 || string(body) == "null" {
		return nil
	}

	var hit model.SearchHit
	if err := json.Unmarshal(body, &hit); err != nil {
		c.logger.Warn("解析检索响应失败", zap.Error(err))
		return nil
	}

	if hit.Answer == "" {
		return nil
	}

	c.logger.Info("知识库检索命中",
		zap.Float64("score", hit.Score),
		zap.String("question", hit.Question))

	return &hit
}
