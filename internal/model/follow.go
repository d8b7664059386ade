package model

import "time"

// UserFollow 用户关注洞
type UserFollow struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UID       uint64 `gorm:"not null;uniqueIndex:uk_follow_user_burrow"`
	BurrowID  uint64 `gorm:"not null;uniqueIndex:uk_follow_user_burrow;index"`
	CreatedAt time.Time
}

// TableName sets table name for UserFollow
func (UserFollow) TableName() string {
	return "user_follows"
}
