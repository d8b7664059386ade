package model

import "time"

// Reply ReplyID 是帖子内的楼层号，0 号楼即帖子正文
type Reply struct {
	PostID     uint64 `gorm:"primaryKey;autoIncrement:false"`
	ReplyID    int32  `gorm:"primaryKey;autoIncrement:false"`
	BurrowID   uint64 `gorm:"not null;index"`
	Content    string `gorm:"type:text"`
	ReplyState int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Reply) TableName() string { return "replies" }
