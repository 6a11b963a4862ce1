package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterFailureThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 2, time.Minute)
	failing := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		assert.Equal(t, StateClosed, cb.GetState())
		err := cb.Call(failing)
		require.Error(t, err)
	}

	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_OpenRejectsWithoutCalling(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 1, time.Minute)
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 2, 20*time.Millisecond)
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)

	// 超时后进入半开，连续成功达到阈值才真正闭合
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.GetState())

	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 2, 20*time.Millisecond)
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))

	time.Sleep(30 * time.Millisecond)

	require.Error(t, cb.Call(func() error { return errors.New("still down") }))
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 1, time.Minute)

	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.NoError(t, cb.Call(func() error { return nil }))

	// 成功清零失败计数，单次失败不应触发熔断
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_GetStats(t *testing.T) {
	cb := NewCircuitBreaker("openai", 5, 3, time.Minute)

	stats := cb.GetStats()
	assert.Equal(t, "openai", stats["name"])
	assert.Equal(t, "closed", stats["state"])
	assert.Equal(t, 5, stats["failure_threshold"])
}
