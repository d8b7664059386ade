package model

import "time"

const (
	BurrowStateNormal = 0
	BurrowStateBanned = 1
)

// Burrow 用户名下的洞
type Burrow struct {
	ID          uint64 `gorm:"primaryKey"`
	UID         uint64 `gorm:"not null;index"`
	Title       string `gorm:"size:64;not null"`
	Description string `gorm:"type:text"`
	State       int    `gorm:"not null;default:0"` // 0=normal 1=banned
	PostNum     int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Burrow) TableName() string { return "burrows" }
