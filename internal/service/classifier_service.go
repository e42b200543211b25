package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// classifyPromptTemplate 问题分类提示词，带两个示例
const classifyPromptTemplate = `请判断以下问题是否属于政务服务类问题，政务服务类问题指与政策法规、行政审批、证照办理、户籍社保、惠民补贴等政府办事相关的问题。如果属于，只回答"是"；如果不属于，只回答"否"。

示例一：
问题：如何申请食品经营许可证？
回答：是

示例二：
问题：今天天气怎么样？
回答：否

问题：%s
回答：`

// ClassifierService 问题分类服务。
// 通过固定模板的提示词让分类模型判断问题是否属于政务服务领域。
type ClassifierService struct {
	completionClient *client.CompletionClient
	model            string
	logger           *zap.Logger
}

// NewClassifierService 创建问题分类服务
func NewClassifierService(completionClient *client.CompletionClient, modelName string, logger *zap.Logger) *ClassifierService {
	return &ClassifierService{
		completionClient: completionClient,
		model:            modelName,
		logger:           logger,
	}
}

// Classify 判断问题是否属于政务服务领域。
// 模型调用失败时返回错误响应，由调用方原样透传，绝不以默认结论兜底。
func (s *ClassifierService) Classify(ctx context.Context, question string) (model.Verdict, *model.ErrorResponse) {
	req := &model.ChatCompletionRequest{
		Model: s.model,
		Messages: model.MessageList{
			{Role: "user", Content: fmt.Sprintf(classifyPromptTemplate, question)},
		},
		Temperature: model.Float(0.1),
		TopP:        model.Float(0.1),
		N:           1,
		MaxTokens:   16,
	}

	resp, errResp := s.completionClient.ChatCompletion(ctx, req)
	if errResp != nil {
		return model.VerdictUnparseable, errResp
	}

	verdict := ParseVerdict(resp.Content())
	s.logger.Info("问题分类完成",
		zap.String("question", question),
		zap.String("verdict", verdict.String()),
		zap.String("raw", resp.Content()))

	return verdict, nil
}

// ParseVerdict 解析分类模型的回复。
// 去掉首尾空白和引号后，以"是"开头判为政务问题，以"否"开头判为通用问题，
// 其余情况无法解析。
func ParseVerdict(text string) model.Verdict {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimLeft(trimmed, `"“”'‘’「『`)

	switch {
	case strings.HasPrefix(trimmed, "是"):
		return model.VerdictInDomain
	case strings.HasPrefix(trimmed, "否"):
		return model.VerdictGeneral
	default:
		return model.VerdictUnparseable
	}
}
