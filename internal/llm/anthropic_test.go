package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProvider_Ready(t *testing.T) {
	assert.False(t, NewAnthropicProvider("", "claude-3-haiku-20240307").Ready())
	assert.True(t, NewAnthropicProvider("sk-test", "claude-3-haiku-20240307").Ready())
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Hello"},{"type":"text","text":" world"}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-haiku-20240307")
	p.endpoint = server.URL

	result, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are TechPal."},
			{Role: RoleUser, Content: "hi"},
		},
		MaxTokens:        500,
		Temperature:      0.7,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello world", result.Content)
	assert.Equal(t, 15, result.TokensUsed)
	assert.Equal(t, ProviderAnthropic, result.Provider)

	// 系统指令提升到顶层system字段，消息列表里不再出现
	assert.Equal(t, "claude-3-haiku-20240307", captured["model"])
	assert.Equal(t, "You are TechPal.", captured["system"])
	assert.Equal(t, float64(500), captured["max_tokens"])

	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	first, ok := messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user", first["role"])

	// 该接口不支持的惩罚参数不应出现在请求体里
	assert.NotContains(t, captured, "presence_penalty")
	assert.NotContains(t, captured, "frequency_penalty")
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-haiku-20240307")
	p.endpoint = server.URL

	result, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAnthropicProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[],"usage":{"input_tokens":3,"output_tokens":0}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-haiku-20240307")
	p.endpoint = server.URL

	result, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestAnthropicProvider_Complete_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "claude-3-haiku-20240307")
	p.endpoint = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
}
