package chat

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/techpal/backend-go/internal/errors"
	"github.com/techpal/backend-go/internal/kafka"
	"github.com/techpal/backend-go/internal/llm"
	"github.com/techpal/backend-go/internal/metrics"
	"github.com/techpal/backend-go/internal/models"
	"github.com/techpal/backend-go/internal/prompt"
	"github.com/techpal/backend-go/internal/safety"
	"github.com/techpal/backend-go/internal/store"
)

// 新会话标题取首条消息的前50个字符
const maxTitleRunes = 50

// ConversationStore 编排器需要的存储操作
type ConversationStore interface {
	GetOrCreateUser(ctx context.Context, sessionID, ageBand string) (*models.User, error)
	CreateConversation(ctx context.Context, userID uint, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, conversationID, ownerUserID uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint, limit int) ([]store.ConversationSummary, error)
	AppendMessage(ctx context.Context, conversationID uint, role, content string, tokensUsed int, provider string) (*models.Message, error)
	DeleteConversation(ctx context.Context, conversationID uint) (bool, error)
	GetHistory(ctx context.Context, conversationID uint) ([]models.Message, error)
}

// Responder 模型网关，永不返回错误
type Responder interface {
	GetResponse(ctx context.Context, messages []llm.Message, ageBand, preferred string) *llm.Result
}

// UsagePublisher 用量事件发布
type UsagePublisher interface {
	Enabled() bool
	Publish(event *kafka.UsageEvent) error
}

// SendMessageRequest 一轮对话的输入
type SendMessageRequest struct {
	SessionID      string
	Message        string
	ConversationID uint // 0表示开新会话
	AgeBand        string
	Provider       string // 首选提供方，可为空
}

// SendMessageResult 一轮对话的输出
type SendMessageResult struct {
	Response       string `json:"response"`
	ConversationID uint   `json:"conversation_id"`
	MessageID      uint   `json:"message_id"`
	TokensUsed     int    `json:"tokens_used"`
	Provider       string `json:"llm_provider"`
}

// ConversationDetail 会话详情，消息按时间顺序
type ConversationDetail struct {
	Conversation *models.Conversation `json:"conversation"`
	Messages     []models.Message     `json:"messages"`
}

// Service 聊天编排器。
// 把一轮对话串成固定顺序的状态机：校验、用户、会话、落用户消息、
// 组装上下文、取回复、落助手消息、发用量事件。
type Service struct {
	store     ConversationStore
	validator *safety.Validator
	assembler *prompt.Assembler
	gateway   Responder
	producer  UsagePublisher
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewService 创建聊天编排器
func NewService(
	conversations ConversationStore,
	validator *safety.Validator,
	assembler *prompt.Assembler,
	gateway Responder,
	producer UsagePublisher,
	collector *metrics.Collector,
	log *zap.Logger,
) *Service {
	return &Service{
		store:     conversations,
		validator: validator,
		assembler: assembler,
		gateway:   gateway,
		producer:  producer,
		metrics:   collector,
		logger:    log,
	}
}

// SendMessage 处理一轮对话。
// 被拒绝的消息不产生任何持久化副作用；助手消息落库失败时，
// 已落库的用户消息保持不变。
func (s *Service) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResult, error) {
	start := time.Now()

	// 1. 安全校验，拒绝的消息不落库
	verdict := s.validator.Validate(req.Message)
	if !verdict.Accepted {
		s.metrics.RecordRejection(verdict.Reason)
		s.metrics.RecordChatRequest("rejected", time.Since(start))
		s.logger.Info("Message rejected",
			zap.String("reason", verdict.Reason))
		return nil, apperrors.NewMessageRejectedError(verdict.Reason)
	}

	// 2. 按会话令牌取或建用户
	user, err := s.store.GetOrCreateUser(ctx, req.SessionID, req.AgeBand)
	if err != nil {
		return nil, s.internalError(start, "get_or_create_user", err)
	}

	ageBand := effectiveAgeBand(req.AgeBand, user.AgeBand)

	// 3. 解析会话，带id的必须属于当前用户
	conversation, err := s.resolveConversation(ctx, user.ID, req.ConversationID, req.Message)
	if err != nil {
		if apperrors.GetAppError(err).Code == apperrors.ErrCodeResourceNotFound {
			s.metrics.RecordChatRequest("not_found", time.Since(start))
		} else {
			s.metrics.RecordChatRequest("error", time.Since(start))
		}
		return nil, err
	}

	// 4. 保存用户消息，token记0且不记提供方
	if _, err := s.store.AppendMessage(ctx, conversation.ID, models.RoleUser, req.Message, 0, ""); err != nil {
		return nil, s.internalError(start, "append_user_message", err)
	}

	// 5. 取完整历史供上下文重放
	history, err := s.store.GetHistory(ctx, conversation.ID)
	if err != nil {
		return nil, s.internalError(start, "get_history", err)
	}

	// 6. 组装上下文并调用网关，失败路径已在网关内降级
	messages := s.assembler.Build(toLLMMessages(history), ageBand)
	result := s.gateway.GetResponse(ctx, messages, ageBand, req.Provider)

	// 7. 保存助手回复，失败时用户消息保持已落库状态
	assistantMessage, err := s.store.AppendMessage(ctx, conversation.ID, models.RoleAssistant, result.Content, result.TokensUsed, result.Provider)
	if err != nil {
		return nil, s.internalError(start, "append_assistant_message", err)
	}

	// 8. 异步发布用量事件，失败只记日志
	s.publishUsage(user, conversation.ID, assistantMessage.ID, ageBand, result)

	s.metrics.RecordChatRequest("ok", time.Since(start))
	s.logger.Info("Chat turn completed",
		zap.Uint("conversation_id", conversation.ID),
		zap.String("provider", result.Provider),
		zap.Int("tokens_used", result.TokensUsed))

	return &SendMessageResult{
		Response:       result.Content,
		ConversationID: conversation.ID,
		MessageID:      assistantMessage.ID,
		TokensUsed:     result.TokensUsed,
		Provider:       result.Provider,
	}, nil
}

// AskOnce 单条消息直达模型，不建用户不建会话也不落库
func (s *Service) AskOnce(ctx context.Context, message, ageBand, preferred string) (string, error) {
	verdict := s.validator.Validate(message)
	if !verdict.Accepted {
		s.metrics.RecordRejection(verdict.Reason)
		return "", apperrors.NewMessageRejectedError(verdict.Reason)
	}

	if !models.ValidAgeBand(ageBand) {
		ageBand = models.DefaultAgeBand
	}

	messages := s.assembler.Build([]llm.Message{{Role: llm.RoleUser, Content: message}}, ageBand)
	result := s.gateway.GetResponse(ctx, messages, ageBand, preferred)
	return result.Content, nil
}

// ListConversations 列出会话摘要，按最近活跃排序
func (s *Service) ListConversations(ctx context.Context, sessionID string, limit int) ([]store.ConversationSummary, error) {
	user, err := s.store.GetOrCreateUser(ctx, sessionID, "")
	if err != nil {
		return nil, apperrors.NewDatabaseError("get_or_create_user").WithCause(err)
	}

	summaries, err := s.store.ListConversations(ctx, user.ID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list_conversations").WithCause(err)
	}
	return summaries, nil
}

// GetConversationDetail 取会话及其全部消息，非属主一律not found
func (s *Service) GetConversationDetail(ctx context.Context, sessionID string, conversationID uint) (*ConversationDetail, error) {
	user, err := s.store.GetOrCreateUser(ctx, sessionID, "")
	if err != nil {
		return nil, apperrors.NewDatabaseError("get_or_create_user").WithCause(err)
	}

	conversation, err := s.store.GetConversation(ctx, conversationID, user.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get_conversation").WithCause(err)
	}
	if conversation == nil {
		return nil, apperrors.NewConversationNotFoundError()
	}

	history, err := s.store.GetHistory(ctx, conversationID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get_history").WithCause(err)
	}

	return &ConversationDetail{
		Conversation: conversation,
		Messages:     history,
	}, nil
}

// DeleteConversation 删除会话，非属主一律not found
func (s *Service) DeleteConversation(ctx context.Context, sessionID string, conversationID uint) error {
	user, err := s.store.GetOrCreateUser(ctx, sessionID, "")
	if err != nil {
		return apperrors.NewDatabaseError("get_or_create_user").WithCause(err)
	}

	conversation, err := s.store.GetConversation(ctx, conversationID, user.ID)
	if err != nil {
		return apperrors.NewDatabaseError("get_conversation").WithCause(err)
	}
	if conversation == nil {
		return apperrors.NewConversationNotFoundError()
	}

	deleted, err := s.store.DeleteConversation(ctx, conversationID)
	if err != nil {
		return apperrors.NewDatabaseError("delete_conversation").WithCause(err)
	}
	if !deleted {
		// 校验和删除之间被并发请求抢先删掉
		return apperrors.NewConversationNotFoundError()
	}
	return nil
}

func (s *Service) resolveConversation(ctx context.Context, userID, conversationID uint, firstMessage string) (*models.Conversation, error) {
	if conversationID != 0 {
		conversation, err := s.store.GetConversation(ctx, conversationID, userID)
		if err != nil {
			return nil, apperrors.NewDatabaseError("get_conversation").WithCause(err)
		}
		if conversation == nil {
			return nil, apperrors.NewConversationNotFoundError()
		}
		return conversation, nil
	}

	conversation, err := s.store.CreateConversation(ctx, userID, deriveTitle(firstMessage))
	if err != nil {
		return nil, apperrors.NewDatabaseError("create_conversation").WithCause(err)
	}
	return conversation, nil
}

func (s *Service) publishUsage(user *models.User, conversationID, messageID uint, ageBand string, result *llm.Result) {
	if s.producer == nil || !s.producer.Enabled() {
		return
	}

	event := &kafka.UsageEvent{
		SessionHash:    kafka.HashSession(user.SessionID),
		ConversationID: conversationID,
		MessageID:      messageID,
		AgeBand:        ageBand,
		Provider:       result.Provider,
		TokensUsed:     result.TokensUsed,
		Timestamp:      time.Now(),
	}

	go func() {
		if err := s.producer.Publish(event); err != nil {
			s.logger.Error("Failed to publish usage event",
				zap.Uint("conversation_id", conversationID),
				zap.Error(err))
		}
	}()
}

func (s *Service) internalError(start time.Time, operation string, err error) error {
	s.metrics.RecordChatRequest("error", time.Since(start))
	s.logger.Error("Chat turn failed",
		zap.String("operation", operation),
		zap.Error(err))
	return apperrors.NewDatabaseError(operation).WithCause(err)
}

// effectiveAgeBand 本轮生效的年龄段：请求里合法的优先，否则用用户档案里的
func effectiveAgeBand(requested, stored string) string {
	if models.ValidAgeBand(requested) {
		return requested
	}
	if models.ValidAgeBand(stored) {
		return stored
	}
	return models.DefaultAgeBand
}

// deriveTitle 新会话标题取首条消息截断，按字符数而不是字节数截
func deriveTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= maxTitleRunes {
		return string(runes)
	}
	return string(runes[:maxTitleRunes]) + "..."
}

func toLLMMessages(messages []models.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	return out
}
