package model

import "time"

// PostLike (uid, post_id) 唯一，防止重复点赞
type PostLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UID       uint64 `gorm:"not null;uniqueIndex:uk_like_user_post"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_like_user_post;index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}

type PostCollection struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UID       uint64 `gorm:"not null;uniqueIndex:uk_collection_user_post"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_collection_user_post;index"`
	CreatedAt time.Time
}

func (PostCollection) TableName() string {
	return "post_collections"
}
