package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// CompletionClient 模型服务客户端，调用 OpenAI 兼容的 chat/completions 接口
type CompletionClient struct {
	apiBase    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCompletionClient 创建模型服务客户端
func NewCompletionClient(cfg config.LLMConfig, logger *zap.Logger) *CompletionClient {
	return &CompletionClient{
		apiBase: strings.TrimSuffix(cfg.APIBase, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// ChatCompletion 调用模型服务生成回答（非流式）。
// 任何失败都以 ErrorResponse 返回，调用方原样透传给用户，不做重试。
func (c *CompletionClient) ChatCompletion(ctx context.Context, req *model.ChatCompletionRequest) (*model.ChatCompletionResponse, *model.ErrorResponse) {
	body, errResp := c.post(ctx, req)
	if errResp != nil {
		return nil, errResp
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, model.NewInternalError(fmt.Sprintf("读取模型响应失败: %v", err))
	}

	var chatResp model.ChatCompletionResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return nil, model.NewInternalError(fmt.Sprintf("解析模型响应失败: %v", err))
	}

	if len(chatResp.Choices) == 0 {
		return nil, model.NewInternalError("模型响应缺少 choices 字段")
	}

	return &chatResp, nil
}

// ChatCompletionStream 调用模型服务生成回答（流式）。
// 返回上游的 SSE 响应体，由调用方负责透传和关闭。
func (c *CompletionClient) ChatCompletionStream(ctx context.Context, req *model.ChatCompletionRequest) (io.ReadCloser, *model.ErrorResponse) {
	return c.post(ctx, req)
}

// post 发送请求，失败或非 200 都转换为 ErrorResponse
func (c *CompletionClient) post(ctx context.Context, req *model.ChatCompletionRequest) (io.ReadCloser, *model.ErrorResponse) {
	url := c.apiBase + "/chat/completions"

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, model.NewInternalError(fmt.Sprintf("序列化请求失败: %v", err))
	}

	c.logger.Debug("调用模型服务",
		zap.String("model", req.Model),
		zap.Bool("stream", req.Stream))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, model.NewInternalError(fmt.Sprintf("创建请求失败: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("模型服务请求失败", zap.String("model", req.Model), zap.Error(err))
		return nil, model.NewInternalError(fmt.Sprintf("模型服务请求失败: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		// 上游返回的错误体原样透传
		var upstreamErr model.ErrorResponse
		if err := json.Unmarshal(data, &upstreamErr); err == nil && upstreamErr.Message != "" {
			c.logger.Error("模型服务返回错误",
				zap.String("model", req.Model),
				zap.Int("code", upstreamErr.Code),
				zap.String("message", upstreamErr.Message))
			return nil, &upstreamErr
		}

		c.logger.Error("模型服务返回错误",
			zap.String("model", req.Model),
			zap.Int("status", resp.StatusCode))
		return nil, model.NewInternalError(fmt.Sprintf("模型服务返回错误 %d: %s", resp.StatusCode, string(data)))
	}

	return resp.Body, nil
}
