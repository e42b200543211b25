package model

import "time"

// WSMessage WebSocket 对话消息
type WSMessage struct {
	MessageID string    `json:"messageId"`
	Type      string    `json:"type"` // CHAT, HEARTBEAT, AI_RESPONSE, ERROR
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WebSocket 消息类型
const (
	WSTypeChat       = "CHAT"
	WSTypeHeartbeat  = "HEARTBEAT"
	WSTypeAIResponse = "AI_RESPONSE"
	WSTypeError      = "ERROR"
)
