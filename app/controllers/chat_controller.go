package controllers

import (
	"github.com/techpal/backend-go/internal/chat"
)

// ChatController 聊天控制器
type ChatController struct {
	BaseController
	chatService *chat.Service
}

// NewChatController 创建聊天控制器
func NewChatController(chatService *chat.Service) *ChatController {
	return &ChatController{chatService: chatService}
}

// chatRequest POST /api/chat 请求体
type chatRequest struct {
	Message        string `json:"message" validate:"required"`
	SessionID      string `json:"session_id" validate:"required"`
	ConversationID uint   `json:"conversation_id"`
	AgeBand        string `json:"age_band" validate:"omitempty,oneof=8-10 11-13 14-16"`
	Provider       string `json:"llm_provider" validate:"omitempty,oneof=openai anthropic"`
}

// Post 处理一轮对话
func (c *ChatController) Post() {
	var req chatRequest
	if !c.bindJSON(&req) {
		return
	}

	result, err := c.chatService.SendMessage(c.Ctx.Request.Context(), &chat.SendMessageRequest{
		SessionID:      req.SessionID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
		AgeBand:        req.AgeBand,
		Provider:       req.Provider,
	})
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(result)
}

// askRequest POST /api/ask 请求体
type askRequest struct {
	Message  string `json:"message" validate:"required"`
	AgeBand  string `json:"age_band" validate:"omitempty,oneof=8-10 11-13 14-16"`
	Provider string `json:"llm_provider" validate:"omitempty,oneof=openai anthropic"`
}

// Ask 单条消息直达模型，不记录任何内容
func (c *ChatController) Ask() {
	var req askRequest
	if !c.bindJSON(&req) {
		return
	}

	answer, err := c.chatService.AskOnce(c.Ctx.Request.Context(), req.Message, req.AgeBand, req.Provider)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"response": answer,
	})
}
