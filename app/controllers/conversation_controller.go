package controllers

import (
	"net/http"

	"github.com/techpal/backend-go/internal/chat"
	"github.com/techpal/backend-go/internal/store"
)

// ConversationController 会话管理控制器
type ConversationController struct {
	BaseController
	chatService *chat.Service
}

// NewConversationController 创建会话管理控制器
func NewConversationController(chatService *chat.Service) *ConversationController {
	return &ConversationController{chatService: chatService}
}

// List 列出会话摘要，按最近活跃排序
func (c *ConversationController) List() {
	sessionID := c.GetString(":session_id")
	if sessionID == "" {
		c.JSONError(http.StatusBadRequest, "Missing required parameter")
		return
	}

	limit, err := c.GetInt("limit", store.DefaultListLimit)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	summaries, err := c.chatService.ListConversations(c.Ctx.Request.Context(), sessionID, limit)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"conversations": summaries,
	})
}

// Get 取会话详情及全部消息
func (c *ConversationController) Get() {
	sessionID := c.GetString(":session_id")
	if sessionID == "" {
		c.JSONError(http.StatusBadRequest, "Missing required parameter")
		return
	}

	conversationID, ok := c.mustParseUintParam(":id")
	if !ok {
		return
	}

	detail, err := c.chatService.GetConversationDetail(c.Ctx.Request.Context(), sessionID, conversationID)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(detail)
}

// Delete 删除会话及其消息
func (c *ConversationController) Delete() {
	sessionID := c.GetString(":session_id")
	if sessionID == "" {
		c.JSONError(http.StatusBadRequest, "Missing required parameter")
		return
	}

	conversationID, ok := c.mustParseUintParam(":id")
	if !ok {
		return
	}

	if err := c.chatService.DeleteConversation(c.Ctx.Request.Context(), sessionID, conversationID); err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"message": "Conversation deleted successfully",
	})
}
