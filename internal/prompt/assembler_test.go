package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techpal/backend-go/internal/llm"
	"github.com/techpal/backend-go/internal/models"
)

func TestAssembler_Build(t *testing.T) {
	a := NewAssembler()
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "what is a cpu"},
		{Role: llm.RoleAssistant, Content: "A CPU is the brain of the computer."},
		{Role: llm.RoleUser, Content: "and what is ram"},
	}

	out := a.Build(history, models.AgeBand11To13)

	require.Len(t, out, 4)
	assert.Equal(t, llm.RoleSystem, out[0].Role)
	assert.Equal(t, DirectiveFor(models.AgeBand11To13), out[0].Content)

	// 历史原样重放，顺序不变
	assert.Equal(t, history, out[1:])
}

func TestAssembler_Build_EmptyHistory(t *testing.T) {
	a := NewAssembler()

	out := a.Build(nil, models.AgeBand8To10)

	require.Len(t, out, 1)
	assert.Equal(t, llm.RoleSystem, out[0].Role)
	assert.NotEmpty(t, out[0].Content)
}

func TestAssembler_Build_DoesNotMutateHistory(t *testing.T) {
	a := NewAssembler()
	history := []llm.Message{{Role: llm.RoleUser, Content: "hello"}}

	_ = a.Build(history, models.AgeBand14To16)

	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, llm.RoleUser, history[0].Role)
}

func TestDirectiveFor_BandSpecificText(t *testing.T) {
	young := DirectiveFor(models.AgeBand8To10)
	middle := DirectiveFor(models.AgeBand11To13)
	older := DirectiveFor(models.AgeBand14To16)

	for _, d := range []string{young, middle, older} {
		assert.True(t, strings.HasPrefix(d, "You are TechPal"))
		assert.Contains(t, d, "personal information")
	}

	assert.NotEqual(t, young, middle)
	assert.NotEqual(t, middle, older)
	assert.Contains(t, young, "8 to 10")
	assert.Contains(t, middle, "11 to 13")
	assert.Contains(t, older, "14 to 16")
}

func TestDirectiveFor_UnknownBandUsesDefault(t *testing.T) {
	assert.Equal(t, DirectiveFor(models.DefaultAgeBand), DirectiveFor(""))
	assert.Equal(t, DirectiveFor(models.DefaultAgeBand), DirectiveFor("adult"))
}
