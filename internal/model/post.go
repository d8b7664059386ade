package model

import "time"

const (
	PostStateNormal  = 0
	PostStateHidden  = 1 // 管理员隐藏
	PostStateDeleted = 2
)

type Post struct {
	ID            uint64    `gorm:"primaryKey"`
	BurrowID      uint64    `gorm:"not null;index:idx_burrow_time,priority:1"`
	Title         string    `gorm:"size:200;not null"`
	Section       string    `gorm:"size:128"` // 逗号分隔
	Tag           string    `gorm:"size:256"` // 逗号分隔
	PostLen       int64     `gorm:"not null;default:1"` // 回复条数，0 号回复是正文
	PostState     int       `gorm:"not null;default:0"`
	LikeNum       int64     `gorm:"not null;default:0"`
	CollectionNum int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"index:idx_burrow_time,priority:2,sort:desc"`
	UpdatedAt     time.Time `gorm:"index"`
}

func (Post) TableName() string { return "posts" }
