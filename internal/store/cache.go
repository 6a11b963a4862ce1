package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listingKeyPrefix = "conversations:user:"

	// listingCacheLimit 缓存整页的条数上限，超过这个limit的请求直查数据库
	listingCacheLimit = 50
)

// ListingCache 会话列表的redis读穿缓存。
// client为nil时全部操作退化为空操作，redis不可用只影响延迟不影响正确性，
// 缓存失败一律记日志后当作未命中处理。
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewListingCache 创建列表缓存，ttlSeconds来自redis配置
func NewListingCache(client *redis.Client, ttlSeconds int, log *zap.Logger) *ListingCache {
	return &ListingCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		logger: log,
	}
}

func buildListingKey(userID uint) string {
	return fmt.Sprintf("%s%d", listingKeyPrefix, userID)
}

// Enabled 缓存是否可用
func (c *ListingCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get 取缓存的整页列表，未命中或缓存不可用返回false
func (c *ListingCache) Get(ctx context.Context, userID uint) ([]ConversationSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, buildListingKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Failed to read listing cache",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, false
	}

	var summaries []ConversationSummary
	if err := json.Unmarshal([]byte(raw), &summaries); err != nil {
		// 缓存内容损坏，删掉等下次重建
		c.logger.Warn("Corrupt listing cache entry, dropping",
			zap.Uint("user_id", userID),
			zap.Error(err))
		c.client.Del(ctx, buildListingKey(userID))
		return nil, false
	}

	return summaries, true
}

// Set 写入整页列表
func (c *ListingCache) Set(ctx context.Context, userID uint, summaries []ConversationSummary) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(summaries)
	if err != nil {
		c.logger.Warn("Failed to marshal listing cache entry",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, buildListingKey(userID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write listing cache",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
}

// Invalidate 在会话创建、消息追加和会话删除后让列表缓存失效
func (c *ListingCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, buildListingKey(userID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate listing cache",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
}
