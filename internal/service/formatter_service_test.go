package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

func TestStripEnclosingQuotes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"你好"`, "你好"},
		{"“第一点。”", "第一点。"},
		{"「内容」", "内容"},
		{"没有引号", "没有引号"},
		{`"只有前引号`, `"只有前引号`},
		{`""`, `""`}, // 只剩引号本身不处理
		{` "带空白" `, "带空白"},
	}

	for _, tc := range cases {
		if got := StripEnclosingQuotes(tc.in); got != tc.want {
			t.Errorf("StripEnclosingQuotes(%q) = %q, 期望 %q", tc.in, got, tc.want)
		}
	}
}

// TestStripEnclosingQuotes_ListIdempotent 已整理好的编号列表再处理一次不应被破坏
func TestStripEnclosingQuotes_ListIdempotent(t *testing.T) {
	formatted := "办理流程如下：\n1.准备材料。\n2.网上预约。\n3.现场办理。"
	once := StripEnclosingQuotes(formatted)
	twice := StripEnclosingQuotes(once)
	if once != formatted || twice != formatted {
		t.Errorf("编号列表被破坏: %q", twice)
	}
}

func TestFormat_StripsQuotes(t *testing.T) {
	upstream := newCompletionStub(t, `"1.第一点。
2.第二点。"`)
	defer upstream.Close()

	cc := client.NewCompletionClient(config.LLMConfig{APIBase: upstream.URL}, zap.NewNop())
	svc := NewFormatterService(cc, "chatglm-6b", zap.NewNop())

	resp, errResp := svc.Format(context.Background(), "第一点是一，第二点是二。")
	if errResp != nil {
		t.Fatalf("整理失败: %v", errResp.Message)
	}

	content := resp.Content()
	if strings.HasPrefix(content, `"`) || strings.HasSuffix(content, `"`) {
		t.Errorf("包裹引号未去除: %q", content)
	}
	if !strings.Contains(content, "1.第一点。") {
		t.Errorf("整理结果内容不符: %q", content)
	}
}

// TestFormat_WireCarriesZeroTemperature 确定性整理依赖 temperature=0，
// 序列化后的请求体必须带上这个字段，不能因零值被省略。
func TestFormat_WireCarriesZeroTemperature(t *testing.T) {
	var rawBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(model.ChatCompletionResponse{
			Choices: []model.Choice{{Message: model.ChatMessage{Role: "assistant", Content: "1.一。"}}},
		})
	}))
	defer upstream.Close()

	cc := client.NewCompletionClient(config.LLMConfig{APIBase: upstream.URL}, zap.NewNop())
	svc := NewFormatterService(cc, "chatglm-6b", zap.NewNop())

	if _, errResp := svc.Format(context.Background(), "原始答案"); errResp != nil {
		t.Fatalf("整理失败: %v", errResp.Message)
	}

	var wire map[string]any
	if err := json.Unmarshal(rawBody, &wire); err != nil {
		t.Fatalf("请求体解析失败: %v", err)
	}
	temp, ok := wire["temperature"]
	if !ok {
		t.Fatalf("请求体缺少 temperature 字段: %s", rawBody)
	}
	if temp != float64(0) {
		t.Errorf("temperature 应为 0, 实际 %v", temp)
	}
	if wire["top_p"] != 0.1 {
		t.Errorf("top_p 应为 0.1, 实际 %v", wire["top_p"])
	}
}

func TestFormatterRequest_FixedParams(t *testing.T) {
	svc := NewFormatterService(nil, "chatglm-6b", zap.NewNop())

	req := svc.Request("原始答案", true)
	if req.Model != "chatglm-6b" {
		t.Errorf("整理模型不符: %s", req.Model)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("temperature 应显式为 0, 实际 %v", req.Temperature)
	}
	if req.TopP == nil || *req.TopP != 0.1 {
		t.Errorf("top_p 不符: %v", req.TopP)
	}
	if req.MaxTokens != 1024 || req.N != 1 {
		t.Errorf("整理子请求参数不符: %+v", req)
	}
	if !req.Stream {
		t.Error("stream 标志应沿用原始请求的取值")
	}
	if !strings.Contains(req.Messages[0].Content, "原始答案") {
		t.Error("提示词应包含待整理文本")
	}
}
