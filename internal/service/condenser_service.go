package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// condensePromptTemplate 多轮对话改写提示词
const condensePromptTemplate = `以下是一段对话历史和用户的最新提问。请结合对话历史，把最新提问改写为一个不依赖上下文、可以独立理解的完整问题。只输出改写后的问题，不要输出其他内容。

对话历史：
%s

最新提问：%s

改写后的问题：`

// CondenserService 多轮对话压缩服务。
// 把此前的对话轮次和最新提问合并改写为一个独立问题，仅在多轮自动路由模式下使用。
type CondenserService struct {
	completionClient *client.CompletionClient
	model            string
	logger           *zap.Logger
}

// NewCondenserService 创建对话压缩服务
func NewCondenserService(completionClient *client.CompletionClient, modelName string, logger *zap.Logger) *CondenserService {
	return &CondenserService{
		completionClient: completionClient,
		model:            modelName,
		logger:           logger,
	}
}

// Condense 将多轮对话改写为独立问题。
// 没有最新的 user 提问时返回空字符串；模型调用失败时返回错误响应。
func (s *CondenserService) Condense(ctx context.Context, req *model.ChatCompletionRequest) (string, *model.ErrorResponse) {
	latest := req.LatestQuestion()
	if latest == "" {
		return "", nil
	}

	history := historyLines(req.Messages)
	if history == "" {
		// 没有历史可压缩，直接使用原问题
		return latest, nil
	}

	prompt := fmt.Sprintf(condensePromptTemplate, history, latest)
	sub := &model.ChatCompletionRequest{
		Model: s.model,
		Messages: model.MessageList{
			{Role: "user", Content: prompt},
		},
		Temperature: model.Float(0.1),
		TopP:        model.Float(0.1),
		N:           1,
		MaxTokens:   256,
	}

	resp, errResp := s.completionClient.ChatCompletion(ctx, sub)
	if errResp != nil {
		return "", errResp
	}

	condensed := strings.TrimSpace(resp.Content())
	s.logger.Info("多轮对话已改写",
		zap.String("latest", latest),
		zap.String("condensed", condensed))

	return condensed, nil
}

// historyLines 将最后一条 user 消息之前的对话轮次拼接为 "role: content" 行。
// 按位置截断而不是按内容匹配，用户重复提问时中间轮次也要保留。
func historyLines(messages model.MessageList) string {
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = i
			break
		}
	}
	if last <= 0 {
		return ""
	}

	var lines []string
	for _, msg := range messages[:last] {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
