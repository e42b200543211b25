package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/config"
)

func newEngine(cfg config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.POST("/demo/chat/completions", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestCORS_AllowAll(t *testing.T) {
	r := newEngine(config.CORSConfig{AllowOrigins: []string{"*"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/demo/chat/completions", nil)
	req.Header.Set("Origin", "https://example.com")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Allow-Origin 不符: %q", got)
	}
}

func TestCORS_Whitelist(t *testing.T) {
	r := newEngine(config.CORSConfig{AllowOrigins: []string{"https://gov.example.com"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/demo/chat/completions", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("白名单外的来源不应设置 CORS 头部, 实际 %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("请求本身仍应正常处理, 实际 %d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(config.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/demo/chat/completions", nil)
	req.Header.Set("Origin", "https://example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求应返回 204, 实际 %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials 不符: %q", got)
	}
}
