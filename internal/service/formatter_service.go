package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// formatPromptTemplate 答案整理提示词，只调整格式不改动内容
const formatPromptTemplate = `你的任务是整理以下文本的格式然后输出，输出内容必须为中文。尽可能用列表作为输出格式。只需输出改写后的正文，不能包含回答提示信息。譬如输入为'你好, 第一点是一， 第二点是二。', 输出为'你好！
1.一。
2.二。'。 待整理的文本内容为：%s`

// FormatterService 答案整理服务。
// 把选定的原始答案再过一次模型，要求保留全部内容、把多要点改写成编号列表。
type FormatterService struct {
	completionClient *client.CompletionClient
	model            string
	logger           *zap.Logger
}

// NewFormatterService 创建答案整理服务
func NewFormatterService(completionClient *client.CompletionClient, modelName string, logger *zap.Logger) *FormatterService {
	return &FormatterService{
		completionClient: completionClient,
		model:            modelName,
		logger:           logger,
	}
}

// Request 构建答案整理子请求，stream 沿用原始请求的取值
func (s *FormatterService) Request(rawAnswer string, stream bool) *model.ChatCompletionRequest {
	return &model.ChatCompletionRequest{
		Model: s.model,
		Messages: model.MessageList{
			{Role: "user", Content: fmt.Sprintf(formatPromptTemplate, rawAnswer)},
		},
		Temperature: model.Float(0),
		TopP:        model.Float(0.1),
		N:           1,
		MaxTokens:   1024,
		Stream:      stream,
	}
}

// Format 非流式整理答案，返回整理后的完整响应。
// 整理结果首尾的成对引号会被去掉。
func (s *FormatterService) Format(ctx context.Context, rawAnswer string) (*model.ChatCompletionResponse, *model.ErrorResponse) {
	resp, errResp := s.completionClient.ChatCompletion(ctx, s.Request(rawAnswer, false))
	if errResp != nil {
		return nil, errResp
	}

	formatted := StripEnclosingQuotes(resp.Content())
	resp.Choices[0].Message.Content = formatted

	s.logger.Debug("答案整理完成",
		zap.Int("rawLength", len(rawAnswer)),
		zap.Int("formattedLength", len(formatted)))

	return resp, nil
}

// quotePairs 视为成对包裹的引号
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"'", "'"},
	{"‘", "’"},
	{"「", "」"},
	{"『", "』"},
}

// StripEnclosingQuotes 去掉文本首尾的一对包裹引号，只去一层
func StripEnclosingQuotes(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, pair := range quotePairs {
		open, close := pair[0], pair[1]
		if len(trimmed) > len(open)+len(close) &&
			strings.HasPrefix(trimmed, open) && strings.HasSuffix(trimmed, close) {
			return strings.TrimSuffix(strings.TrimPrefix(trimmed, open), close)
		}
	}
	return trimmed
}
