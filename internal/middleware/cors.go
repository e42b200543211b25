package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/config"
)

// CORS 跨域中间件，放行范围由配置的白名单决定
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowOrigins) == 0 || contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	if methods == "" {
		methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	headers := strings.Join(cfg.AllowHeaders, ", ")
	if headers == "" {
		headers = "Content-Type, Authorization"
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll:
			if origin == "" {
				origin = "*"
			}
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		case contains(cfg.AllowOrigins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		default:
			// 不在白名单内，不设置 CORS 头部
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", methods)
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Max-Age", "3600")

		// OPTIONS 预检请求
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// contains 判断列表是否包含指定值
func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
