package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

func newKnowledge(t *testing.T, searchURL string, threshold float64) *KnowledgeService {
	t.Helper()
	logger := zap.NewNop()
	sc := client.NewSearchClient(searchURL, logger)
	return NewKnowledgeService(sc, nil, config.SearchConfig{
		Threshold:     threshold,
		CacheTTLHours: 1,
	}, logger)
}

func TestFindAnswer_AboveThreshold(t *testing.T) {
	search := newFakeSearch(&model.SearchHit{Score: 30, Question: "如何申请驾照", Answer: "答案"})
	defer search.Close()

	svc := newKnowledge(t, search.URL, 25)
	hit := svc.FindAnswer(context.Background(), "如何申请驾照")
	if hit == nil {
		t.Fatal("应返回命中结果")
	}
	if hit.Answer != "答案" {
		t.Errorf("答案不符: %q", hit.Answer)
	}
}

func TestFindAnswer_BelowThreshold(t *testing.T) {
	search := newFakeSearch(&model.SearchHit{Score: 20, Question: "q", Answer: "答案"})
	defer search.Close()

	svc := newKnowledge(t, search.URL, 25)
	if hit := svc.FindAnswer(context.Background(), "问题"); hit != nil {
		t.Errorf("低于阈值的命中应被丢弃, 实际 %+v", hit)
	}
}

func TestFindAnswer_EmptyBody(t *testing.T) {
	search := newFakeSearch(nil)
	defer search.Close()

	svc := newKnowledge(t, search.URL, 25)
	if hit := svc.FindAnswer(context.Background(), "问题"); hit != nil {
		t.Errorf("空响应体应视为未命中, 实际 %+v", hit)
	}
}

func TestFindAnswer_SearchUnavailable(t *testing.T) {
	// 关闭的服务地址，传输失败应视为未命中而不是错误
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	search.Close()

	svc := newKnowledge(t, search.URL, 25)
	if hit := svc.FindAnswer(context.Background(), "问题"); hit != nil {
		t.Errorf("检索服务不可用应视为未命中, 实际 %+v", hit)
	}
}

func TestFindAnswer_MalformedResponse(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer search.Close()

	svc := newKnowledge(t, search.URL, 25)
	if hit := svc.FindAnswer(context.Background(), "问题"); hit != nil {
		t.Errorf("响应格式错误应视为未命中, 实际 %+v", hit)
	}
}
