package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lingmind/lingmind-go/internal/model"
	"github.com/lingmind/lingmind-go/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境应该检查 Origin 白名单
		return true
	},
}

// WebSocketHandler WebSocket 对话处理器。
// 每个连接独立处理，一问一答，内部统一走非流式路由。
type WebSocketHandler struct {
	router *service.RouterService
	model  string
	logger *zap.Logger
}

// NewWebSocketHandler 创建 WebSocket 对话处理器
func NewWebSocketHandler(router *service.RouterService, qaModel string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		router: router,
		model:  qaModel,
		logger: logger,
	}
}

// HandleWebSocket WebSocket 连接入口，GET /demo/chat/ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket 升级失败", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	h.logger.Info("WebSocket 连接建立",
		zap.String("connId", connID),
		zap.String("clientIp", c.ClientIP()))

	for {
		var msg model.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket 读取错误", zap.Error(err))
			}
			break
		}

		h.handleMessage(c, conn, connID, &msg)
	}

	h.logger.Info("WebSocket 连接断开", zap.String("connId", connID))
}

// handleMessage 处理一条连接内消息
func (h *WebSocketHandler) handleMessage(c *gin.Context, conn *websocket.Conn, connID string, msg *model.WSMessage) {
	switch msg.Type {
	case model.WSTypeChat:
		h.answer(c, conn, connID, msg.Content)

	case model.WSTypeHeartbeat:
		h.logger.Debug("收到心跳", zap.String("connId", connID))

	default:
		h.logger.Warn("未知消息类型",
			zap.String("connId", connID),
			zap.String("type", msg.Type))
	}
}

// answer 走路由流程回答问题，并把应答写回连接
func (h *WebSocketHandler) answer(c *gin.Context, conn *websocket.Conn, connID, question string) {
	req := &model.ChatCompletionRequest{
		Model:    h.model,
		Messages: model.MessageList{{Role: "user", Content: question}},
		N:        1,
	}

	result, errResp := h.router.Route(c.Request.Context(), req)

	reply := model.WSMessage{
		MessageID: uuid.New().String(),
		Timestamp: time.Now(),
	}
	if errResp != nil {
		h.logger.Error("WebSocket 问答失败",
			zap.String("connId", connID),
			zap.String("message", errResp.Message))
		reply.Type = model.WSTypeError
		reply.Content = errResp.Message
	} else {
		reply.Type = model.WSTypeAIResponse
		reply.Content = result.Response.Content()
	}

	if err := conn.WriteJSON(reply); err != nil {
		h.logger.Error("WebSocket 写入失败",
			zap.String("connId", connID),
			zap.Error(err))
	}
}
