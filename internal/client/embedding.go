package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lingmind/lingmind-go/internal/config"
	"go.uber.org/zap"
)

// EmbeddingClient 文本向量化客户端，调用模型服务的 embeddings 接口
type EmbeddingClient struct {
	apiBase string
	apiKey  string
	model   string
	logger  *zap.Logger
	client  *http.Client
}

// EmbeddingRequest 请求结构
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingResponse 响应结构
type EmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbeddingClient 创建向量化客户端
func NewEmbeddingClient(cfg config.LLMConfig, embeddingModel string, logger *zap.Logger) *EmbeddingClient {
	return &EmbeddingClient{
		apiBase: strings.TrimSuffix(cfg.APIBase, "/"),
		apiKey:  cfg.APIKey,
		model:   embeddingModel,
		logger:  logger,
		client:  &http.Client{},
	}
}

// GetEmbedding 获取单个文本的向量
func (c *EmbeddingClient) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// GetEmbeddings 批量获取文本向量
func (c *EmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	c.logger.Debug("获取文本向量", zap.Int("count", len(texts)))

	reqBody := EmbeddingRequest{
		Model: c.model,
		Input: texts,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 返回错误 %d: %s", resp.StatusCode, string(body))
	}

	var embResp EmbeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	embeddings := make([][]float64, len(embResp.Data))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(embeddings) {
			return nil, fmt.Errorf("响应向量序号越界: %d", item.Index)
		}
		embeddings[item.Index] = item.Embedding
	}

	return embeddings, nil
}
