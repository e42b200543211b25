package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/esearch"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// newSearchServer 装配接到 Elasticsearch 桩的检索服务
func newSearchServer(t *testing.T, esHandler http.HandlerFunc) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	es := httptest.NewServer(esHandler)
	qadb := esearch.NewQaDB(config.ElasticConfig{Addr: es.URL, Index: "government_data"}, zap.NewNop())
	h := NewSearchHandler(qadb, nil, nil, config.VectorConfig{}, zap.NewNop())

	r := gin.New()
	r.POST("/search", h.Search)
	r.GET("/similar", h.Similar)

	return r, es.Close
}

func TestSearch_Hit(t *testing.T) {
	r, cleanup := newSearchServer(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[{"_score":28.0,"_source":{"question":"如何申请驾照","answer":"先体检再考试"}}]}}`))
	})
	defer cleanup()

	form := url.Values{"question": {"怎么考驾照"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}

	var hit model.SearchHit
	if err := json.Unmarshal(w.Body.Bytes(), &hit); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if hit.Score != 28.0 || hit.Answer != "先体检再考试" {
		t.Errorf("命中结果不符: %+v", hit)
	}
}

func TestSearch_NoHitEmptyBody(t *testing.T) {
	r, cleanup := newSearchServer(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	})
	defer cleanup()

	form := url.Values{"question": {"没有的问题"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("无命中时响应体应为空, 实际 %q", w.Body.String())
	}
}

func TestSearch_MissingQuestion(t *testing.T) {
	r, cleanup := newSearchServer(t, func(w http.ResponseWriter, req *http.Request) {})
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 question 参数应返回 400, 实际 %d", w.Code)
	}
}

func TestSimilar_Disabled(t *testing.T) {
	r, cleanup := newSearchServer(t, func(w http.ResponseWriter, req *http.Request) {})
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/similar?q=驾照", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("向量召回未开启应返回 503, 实际 %d", w.Code)
	}
}
