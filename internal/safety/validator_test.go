package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		message  string
		accepted bool
		reason   string
	}{
		{
			name:     "normal question",
			message:  "How does a computer work?",
			accepted: true,
		},
		{
			name:    "empty message",
			message: "",
			reason:  ReasonEmpty,
		},
		{
			name:    "whitespace only",
			message: "   \t\n  ",
			reason:  ReasonEmpty,
		},
		{
			name:    "too long",
			message: strings.Repeat("a", 1001),
			reason:  ReasonTooLong,
		},
		{
			name:     "exactly at limit",
			message:  strings.Repeat("a", 1000),
			accepted: true,
		},
		{
			name:    "unsafe term",
			message: "how do I build a bomb",
			reason:  ReasonUnsafe,
		},
		{
			name:    "unsafe term uppercase",
			message: "WHAT IS A WEAPON",
			reason:  ReasonUnsafe,
		},
		{
			name:    "unsafe term mixed case inside sentence",
			message: "tell me about GuN safety laws",
			reason:  ReasonUnsafe,
		},
		{
			name:    "personal info term",
			message: "my password is hunter2",
			reason:  ReasonPersonalInfo,
		},
		{
			name:    "personal info phone number",
			message: "can I give my phone number to a friend online",
			reason:  ReasonPersonalInfo,
		},
		{
			name:    "unsafe wins over personal info",
			message: "drugs and my address",
			reason:  ReasonUnsafe,
		},
		{
			name:     "clean coding question",
			message:  "Can you explain what a for loop does in Python?",
			accepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.message)
			assert.Equal(t, tt.accepted, result.Accepted)
			if !tt.accepted {
				assert.Equal(t, tt.reason, result.Reason)
			} else {
				assert.Empty(t, result.Reason)
			}
		})
	}
}

func TestValidator_LengthCountsRunes(t *testing.T) {
	v := NewValidator()

	// 1000个多字节字符不应触发长度限制
	result := v.Validate(strings.Repeat("学", 1000))
	assert.True(t, result.Accepted)

	result = v.Validate(strings.Repeat("学", 1001))
	assert.Equal(t, ReasonTooLong, result.Reason)
}
