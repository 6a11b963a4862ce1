package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/techpal/backend-go/internal/models"
)

// DefaultListLimit 会话列表的默认条数
const DefaultListLimit = 10

// ConversationSummary 会话列表条目
type ConversationSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Store 会话存储，负责用户、会话和消息的持久化。
// 所有权校验属于上层编排逻辑，这里只提供按属主过滤的查询。
type Store struct {
	db     *gorm.DB
	cache  *ListingCache
	logger *zap.Logger
}

// NewStore 创建会话存储
func NewStore(db *gorm.DB, cache *ListingCache, log *zap.Logger) *Store {
	return &Store{
		db:     db,
		cache:  cache,
		logger: log,
	}
}

// GetOrCreateUser 按会话令牌取用户，不存在则创建。
// 并发创建撞到session_id唯一约束时重读胜出的那条，调用方拿到的
// 一定是同一个用户。年龄段只在创建时落库，非法值按默认年龄段处理。
func (s *Store) GetOrCreateUser(ctx context.Context, sessionID, ageBand string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !models.ValidAgeBand(ageBand) {
		ageBand = models.DefaultAgeBand
	}

	user = models.User{
		SessionID: sessionID,
		AgeBand:   ageBand,
		CreatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Create(&user).Error
	if err == nil {
		s.logger.Info("Created new user",
			zap.Uint("user_id", user.ID),
			zap.String("age_band", user.AgeBand))
		return &user, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if rerr := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&user).Error; rerr != nil {
			return nil, fmt.Errorf("failed to reload user after create conflict: %w", rerr)
		}
		return &user, nil
	}

	return nil, fmt.Errorf("failed to create user: %w", err)
}

// CreateConversation 创建会话
func (s *Store) CreateConversation(ctx context.Context, userID uint, title string) (*models.Conversation, error) {
	now := time.Now()
	conversation := &models.Conversation{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	s.logger.Info("Created new conversation",
		zap.Uint("conversation_id", conversation.ID),
		zap.Uint("user_id", userID))

	return conversation, nil
}

// GetConversation 按属主取会话。
// 不存在和不属于该用户都返回(nil, nil)，上层据此统一回答not found，
// 不向非属主暴露会话是否存在。
func (s *Store) GetConversation(ctx context.Context, conversationID, ownerUserID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, ownerUserID).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// ListConversations 列出用户的会话摘要，按最近活跃排序。
// 不超过缓存上限的请求走redis读穿缓存，缓存里存的是整页，
// 小limit从整页截取。
func (s *Store) ListConversations(ctx context.Context, userID uint, limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if limit <= listingCacheLimit && s.cache.Enabled() {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			return truncateSummaries(cached, limit), nil
		}

		summaries, err := s.queryListing(ctx, userID, listingCacheLimit)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, userID, summaries)
		return truncateSummaries(summaries, limit), nil
	}

	return s.queryListing(ctx, userID, limit)
}

func (s *Store) queryListing(ctx context.Context, userID uint, limit int) ([]ConversationSummary, error) {
	summaries := make([]ConversationSummary, 0, limit)
	err := s.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.id, conversations.title, conversations.created_at, conversations.updated_at, COUNT(messages.id) AS message_count").
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Where("conversations.user_id = ?", userID).
		Group("conversations.id").
		Order("conversations.updated_at DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return summaries, nil
}

func truncateSummaries(summaries []ConversationSummary, limit int) []ConversationSummary {
	if len(summaries) > limit {
		return summaries[:limit]
	}
	return summaries
}

// AppendMessage 追加一条消息并在同一事务里刷新会话的updated_at，
// 列表排序和消息追加保持一致。
func (s *Store) AppendMessage(ctx context.Context, conversationID uint, role, content string, tokensUsed int, provider string) (*models.Message, error) {
	message := &models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TokensUsed:     tokensUsed,
		LLMProvider:    provider,
		CreatedAt:      time.Now(),
	}

	var ownerID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.Select("id", "user_id").First(&conversation, conversationID).Error; err != nil {
			return fmt.Errorf("failed to load conversation for append: %w", err)
		}
		ownerID = conversation.UserID

		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}

		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", message.CreatedAt).Error; err != nil {
			return fmt.Errorf("failed to update conversation timestamp: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, ownerID)
	return message, nil
}

// DeleteConversation 删除会话及其全部消息，一个事务完成。
// 会话不存在返回(false, nil)。
func (s *Store) DeleteConversation(ctx context.Context, conversationID uint) (bool, error) {
	var ownerID uint
	deleted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.Select("id", "user_id").First(&conversation, conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load conversation for delete: %w", err)
		}
		ownerID = conversation.UserID

		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}

		if err := tx.Delete(&models.Conversation{}, conversationID).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.cache.Invalidate(ctx, ownerID)
		s.logger.Info("Deleted conversation",
			zap.Uint("conversation_id", conversationID),
			zap.Uint("user_id", ownerID))
	}
	return deleted, nil
}

// GetHistory 按时间顺序取会话的全部消息，同秒落库的用id稳定排序
func (s *Store) GetHistory(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	return messages, nil
}
