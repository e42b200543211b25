package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lingmind/lingmind-go/internal/model"
	"github.com/lingmind/lingmind-go/internal/service"
	"go.uber.org/zap"
)

// ChatHandler 对话补全处理器
type ChatHandler struct {
	router *service.RouterService
	logger *zap.Logger
}

// NewChatHandler 创建对话补全处理器
func NewChatHandler(router *service.RouterService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		router: router,
		logger: logger,
	}
}

// ChatCompletions 政务问答入口，POST /demo/chat/completions
func (h *ChatHandler) ChatCompletions(c *gin.Context) {
	requestID := uuid.New().String()

	var req model.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("请求体校验失败",
			zap.String("requestId", requestID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Message: err.Error(),
			Code:    model.CodeValidationError,
		})
		return
	}

	h.logger.Info("收到问答请求",
		zap.String("requestId", requestID),
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Bool("stream", req.Stream))

	result, errResp := h.router.Route(c.Request.Context(), &req)
	if errResp != nil {
		h.logger.Error("问答流程失败",
			zap.String("requestId", requestID),
			zap.Int("code", errResp.Code),
			zap.String("message", errResp.Message))
		c.JSON(http.StatusBadRequest, errResp)
		return
	}

	if result.Stream != nil {
		h.streamResponse(c, result.Stream)
		return
	}

	c.JSON(http.StatusOK, result.Response)
}

// streamResponse 把上游的 SSE 响应透传给客户端
func (h *ChatHandler) streamResponse(c *gin.Context, stream io.ReadCloser) {
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				h.logger.Warn("客户端连接中断", zap.Error(werr))
				return
			}
			c.Writer.Flush()
		}
		if err != nil {
			return
		}
	}
}

// Health 健康检查
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"service": c.GetString("service_name"),
	})
}
