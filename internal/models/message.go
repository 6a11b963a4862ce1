package models

import (
	"time"
)

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 消息表。
// 用户消息的TokensUsed恒为0且不记录提供方；助手消息记录提供方上报的
// token用量，降级回复记为0。
type Message struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	ConversationID uint      `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	Role           string    `gorm:"column:role;size:20;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	TokensUsed     int       `gorm:"column:tokens_used;not null;default:0" json:"tokens_used"`
	LLMProvider    string    `gorm:"column:llm_provider;size:20" json:"llm_provider"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index" json:"created_at"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
