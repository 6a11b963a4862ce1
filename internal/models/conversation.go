package models

import (
	"time"
)

// Conversation 会话表。
// Title取自首条用户消息的前50个字符，UpdatedAt在每次追加消息时刷新。
type Conversation struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Title     string    `gorm:"column:title;size:255;not null" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;index" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}
