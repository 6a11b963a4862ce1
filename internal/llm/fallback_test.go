package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techpal/backend-go/internal/models"
)

func TestFallbackTable_Deterministic(t *testing.T) {
	table := NewFallbackTable()

	first := table.Lookup("hello there", models.AgeBand8To10)
	second := table.Lookup("hello there", models.AgeBand8To10)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFallbackTable_TopicRouting(t *testing.T) {
	table := NewFallbackTable()
	band := models.AgeBand11To13

	tests := []struct {
		name    string
		message string
		sameAs  string
	}{
		{"greeting hello", "Hello, are you there?", "hi"},
		{"greeting hey", "hey!", "hi"},
		{"computer question", "how does a computer work", "computer"},
		{"internet question", "what is the internet made of", "internet"},
		{"coding question", "can you teach me python", "coding"},
		{"safety question", "is it safe to talk to a stranger?", "safe"},
		{"math question", "I need help with math homework", "math"},
		{"science question", "tell me about space and planets", "science"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Lookup(tt.message, band)
			want := table.Lookup(tt.sameAs, band)
			require.NotEmpty(t, got)
			assert.Equal(t, want, got)
		})
	}

	// 不同主题的回复应当不同
	assert.NotEqual(t, table.Lookup("hi", band), table.Lookup("computer", band))
	assert.NotEqual(t, table.Lookup("computer", band), table.Lookup("science", band))
}

func TestFallbackTable_DefaultResponseWhenNoKeywordMatches(t *testing.T) {
	table := NewFallbackTable()
	band := models.AgeBand11To13

	got := table.Lookup("qwertyuiop", band)
	require.NotEmpty(t, got)
	assert.NotEqual(t, table.Lookup("hi", band), got)
}

func TestFallbackTable_MatchesWholeWordsOnly(t *testing.T) {
	table := NewFallbackTable()
	band := models.AgeBand11To13

	// "history"包含"hi"，但不应命中问候主题
	got := table.Lookup("this is history", band)
	assert.Equal(t, table.Lookup("qwertyuiop", band), got)
	assert.NotEqual(t, table.Lookup("hi", band), got)
}

func TestFallbackTable_StripsPunctuation(t *testing.T) {
	table := NewFallbackTable()
	band := models.AgeBand8To10

	assert.Equal(t, table.Lookup("hello", band), table.Lookup("Hello!", band))
	assert.Equal(t, table.Lookup("computer", band), table.Lookup("What is a computer?", band))
}

func TestFallbackTable_GreetingWinsOverLaterTopics(t *testing.T) {
	table := NewFallbackTable()
	band := models.AgeBand11To13

	got := table.Lookup("hello can you teach me coding", band)
	assert.Equal(t, table.Lookup("hi", band), got)
}

func TestFallbackTable_UnknownAgeBandUsesDefault(t *testing.T) {
	table := NewFallbackTable()

	assert.Equal(t, table.Lookup("hello", models.DefaultAgeBand), table.Lookup("hello", "adult"))
	assert.Equal(t, table.Lookup("hello", models.DefaultAgeBand), table.Lookup("hello", ""))
}

func TestFallbackTable_AllBandsHaveResponses(t *testing.T) {
	table := NewFallbackTable()
	bands := []string{models.AgeBand8To10, models.AgeBand11To13, models.AgeBand14To16}
	messages := []string{"hello", "computer", "internet", "coding", "safe", "math", "science", "anything else"}

	for _, band := range bands {
		for _, msg := range messages {
			assert.NotEmpty(t, table.Lookup(msg, band), "band %s message %q", band, msg)
		}
	}

	// 同一主题对不同年龄段给出不同的回复
	assert.NotEqual(t,
		table.Lookup("hello", models.AgeBand8To10),
		table.Lookup("hello", models.AgeBand14To16))
}
