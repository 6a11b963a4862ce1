package models

import (
	"time"
)

// 年龄段取值，空字符串表示未提供
const (
	AgeBand8To10  = "8-10"
	AgeBand11To13 = "11-13"
	AgeBand14To16 = "14-16"
)

// DefaultAgeBand 未提供年龄段时使用的默认值
const DefaultAgeBand = AgeBand11To13

// User 用户表。
// 用户由客户端持有的不透明会话令牌标识，没有注册和登录流程。
type User struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	SessionID string    `gorm:"column:session_id;size:255;not null;uniqueIndex" json:"session_id"`
	AgeBand   string    `gorm:"column:age_band;size:10" json:"age_band"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// ValidAgeBand 检查年龄段取值是否合法
func ValidAgeBand(band string) bool {
	switch band {
	case AgeBand8To10, AgeBand11To13, AgeBand14To16:
		return true
	}
	return false
}
