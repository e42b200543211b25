package service

import (
	"context"
	"io"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// RouteResult 路由结果。Stream 非空表示流式响应，由调用方负责透传和关闭；
// 否则 Response 为最终响应。
type RouteResult struct {
	Response *model.ChatCompletionResponse
	Stream   io.ReadCloser
}

// RouterService 请求路由服务，政务问答网关的核心决策流程。
//
// 自动路由开启时按 检索 → 分类 → 分发 → 整理 的顺序处理：
//  1. 知识库命中高置信答案则直接整理后返回；
//  2. 否则由分类模型判断是否政务问题；
//  3. 政务问题走政务问答模型，再整理格式；
//  4. 通用问题注入身份设定后走通用模型，不做整理。
//
// 每个阶段都是一次外部调用，任何阶段失败都把错误响应原样返回，不重试不兜底。
type RouterService struct {
	completion *client.CompletionClient
	knowledge  *KnowledgeService
	classifier *ClassifierService
	condenser  *CondenserService
	formatter  *FormatterService
	models     config.ModelsConfig
	routing    config.RoutingConfig
	logger     *zap.Logger
}

// NewRouterService 创建请求路由服务。
// 路由模式由配置注入，进程运行期间不再变化。
func NewRouterService(
	completion *client.CompletionClient,
	knowledge *KnowledgeService,
	classifier *ClassifierService,
	condenser *CondenserService,
	formatter *FormatterService,
	models config.ModelsConfig,
	routing config.RoutingConfig,
	logger *zap.Logger,
) *RouterService {
	return &RouterService{
		completion: completion,
		knowledge:  knowledge,
		classifier: classifier,
		condenser:  condenser,
		formatter:  formatter,
		models:     models,
		routing:    routing,
		logger:     logger,
	}
}

// Route 处理一次对话补全请求。
// 原始请求不会被修改，每个阶段的子请求都是独立派生的。
func (s *RouterService) Route(ctx context.Context, req *model.ChatCompletionRequest) (*RouteResult, *model.ErrorResponse) {
	question := req.LatestQuestion()
	if question == "" {
		return nil, &model.ErrorResponse{Message: "请求中缺少用户提问", Code: model.CodeValidationError}
	}

	// 自动路由关闭：丢弃历史，只保留最新提问直接转发
	if !s.routing.AutoAgent {
		s.logger.Info("自动路由未开启，直接转发", zap.String("question", question))
		sub := deriveSubRequest(req, req.Model, question, req.Stream)
		return s.dispatch(ctx, sub)
	}

	// 多轮对话先改写为独立问题
	if s.routing.CondenseHistory && len(req.Messages) > 1 {
		condensed, errResp := s.condenser.Condense(ctx, req)
		if errResp != nil {
			return nil, errResp
		}
		if condensed != "" {
			question = condensed
		}
	}

	// 知识库检索，高置信命中直接整理返回
	if hit := s.knowledge.FindAnswer(ctx, question); hit != nil {
		s.logger.Info("使用知识库答案",
			zap.String("question", question),
			zap.Float64("score", hit.Score))
		return s.formatAnswer(ctx, hit.Answer, req.Stream)
	}

	// 问题分类
	verdict, errResp := s.classifier.Classify(ctx, question)
	if errResp != nil {
		return nil, errResp
	}

	if verdict == model.VerdictUnparseable {
		// 分类模型没有按要求回答是/否，按通用问题处理并留痕
		s.logger.Warn("分类结果无法解析，按通用问题处理", zap.String("question", question))
		verdict = model.VerdictGeneral
	}

	if verdict == model.VerdictInDomain {
		// 政务问题：只带独立问题调政务问答模型，成功后整理格式
		sub := deriveSubRequest(req, s.models.QA, question, false)
		resp, errResp := s.completion.ChatCompletion(ctx, sub)
		if errResp != nil {
			return nil, errResp
		}
		return s.formatAnswer(ctx, resp.Content(), req.Stream)
	}

	// 通用问题：注入身份设定后调通用模型，直接返回不整理
	injected := InjectIdentity(question)
	sub := deriveSubRequest(req, s.models.General, injected, req.Stream)
	s.logger.Info("转发至通用模型", zap.String("question", question))
	return s.dispatch(ctx, sub)
}

// dispatch 按 stream 取值分发子请求并返回终态结果
func (s *RouterService) dispatch(ctx context.Context, sub *model.ChatCompletionRequest) (*RouteResult, *model.ErrorResponse) {
	if sub.Stream {
		stream, errResp := s.completion.ChatCompletionStream(ctx, sub)
		if errResp != nil {
			return nil, errResp
		}
		return &RouteResult{Stream: stream}, nil
	}

	resp, errResp := s.completion.ChatCompletion(ctx, sub)
	if errResp != nil {
		return nil, errResp
	}
	return &RouteResult{Response: resp}, nil
}

// formatAnswer 把选定的答案交给整理模型，stream 恢复为原始请求的取值
func (s *RouterService) formatAnswer(ctx context.Context, rawAnswer string, stream bool) (*RouteResult, *model.ErrorResponse) {
	if stream {
		body, errResp := s.completion.ChatCompletionStream(ctx, s.formatter.Request(rawAnswer, true))
		if errResp != nil {
			return nil, errResp
		}
		return &RouteResult{Stream: body}, nil
	}

	resp, errResp := s.formatter.Format(ctx, rawAnswer)
	if errResp != nil {
		return nil, errResp
	}
	return &RouteResult{Response: resp}, nil
}

// deriveSubRequest 基于原始请求派生内部子请求。
// 原始请求不被修改；消息只保留一条 user 提问，n 恒为 1。
func deriveSubRequest(base *model.ChatCompletionRequest, modelName, question string, stream bool) *model.ChatCompletionRequest {
	sub := *base
	sub.Model = modelName
	sub.Messages = model.MessageList{{Role: "user", Content: question}}
	sub.Stream = stream
	sub.N = 1
	return &sub
}
