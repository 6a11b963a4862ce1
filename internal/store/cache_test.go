package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestListingCache_DisabledWithoutClient(t *testing.T) {
	c := NewListingCache(nil, 300, zap.NewNop())

	assert.False(t, c.Enabled())

	got, ok := c.Get(context.Background(), 7)
	assert.False(t, ok)
	assert.Nil(t, got)

	// 没有redis时写入和失效都必须是安全的空操作
	c.Set(context.Background(), 7, []ConversationSummary{{ID: 1}})
	c.Invalidate(context.Background(), 7)
}

func TestListingCache_NilReceiver(t *testing.T) {
	var c *ListingCache

	assert.False(t, c.Enabled())

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)

	c.Set(context.Background(), 1, nil)
	c.Invalidate(context.Background(), 1)
}

func TestBuildListingKey(t *testing.T) {
	assert.Equal(t, "conversations:user:42", buildListingKey(42))
}
