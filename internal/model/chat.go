package model

import (
	"encoding/json"
	"fmt"
)

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// MessageList 消息列表。兼容两种请求格式：
// 字符串（视为单条 user 消息）或 role/content 对象数组。
type MessageList []ChatMessage

// UnmarshalJSON 支持 "messages" 字段为字符串或数组
func (m *MessageList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = MessageList{{Role: "user", Content: text}}
		return nil
	}

	var msgs []ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("messages 字段格式错误: %w", err)
	}
	*m = msgs
	return nil
}

// StopWords 停止词。兼容单个字符串或字符串数组。
type StopWords []string

// UnmarshalJSON 支持 "stop" 字段为字符串或数组
func (s *StopWords) UnmarshalJSON(data []byte) error {
	var word string
	if err := json.Unmarshal(data, &word); err == nil {
		*s = StopWords{word}
		return nil
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return fmt.Errorf("stop 字段格式错误: %w", err)
	}
	*s = words
	return nil
}

// ChatCompletionRequest OpenAI 兼容的对话补全请求。
// 采样参数用指针区分"未设置"和"显式设为 0"：显式的 0 必须上送，
// 否则上游会按自身默认值采样。
type ChatCompletionRequest struct {
	Model            string      `json:"model" binding:"required"`
	Messages         MessageList `json:"messages" binding:"required"`
	Temperature      *float64    `json:"temperature,omitempty"`
	TopP             *float64    `json:"top_p,omitempty"`
	N                int         `json:"n,omitempty"`
	MaxTokens        int         `json:"max_tokens,omitempty"`
	Stop             StopWords   `json:"stop,omitempty"`
	Stream           bool        `json:"stream,omitempty"`
	PresencePenalty  *float64    `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64    `json:"frequency_penalty,omitempty"`
	User             string      `json:"user,omitempty"`
}

// Float 构造采样参数的指针值
func Float(v float64) *float64 {
	return &v
}

// LatestQuestion 取最后一条 user 消息的内容，没有则返回空字符串
func (r *ChatCompletionRequest) LatestQuestion() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Choice 单个补全结果
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// Usage token 用量统计
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse OpenAI 兼容的对话补全响应
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Content 取第一个 choice 的回复文本，流水线只读取这一个字段
func (r *ChatCompletionResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// 错误码，与上游模型服务的约定保持一致
const (
	CodeValidationError = 40001
	CodeInternalError   = 50001
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewInternalError 构建内部错误响应
func NewInternalError(message string) *ErrorResponse {
	return &ErrorResponse{Message: message, Code: CodeInternalError}
}

// SearchHit 知识库检索命中结果
type SearchHit struct {
	Score    float64 `json:"score"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
}

// Verdict 问题分类结论
type Verdict int

const (
	// VerdictInDomain 政务服务类问题
	VerdictInDomain Verdict = iota
	// VerdictGeneral 通用问题
	VerdictGeneral
	// VerdictUnparseable 分类模型回复无法解析
	VerdictUnparseable
)

// String 返回分类结论的可读名称
func (v Verdict) String() string {
	switch v {
	case VerdictInDomain:
		return "in-domain"
	case VerdictGeneral:
		return "general"
	default:
		return "unparseable"
	}
}
