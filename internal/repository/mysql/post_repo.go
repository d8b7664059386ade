package mysql

import (
	"context"

	"Burrow_Hole/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

// VisibleInBatches 按主键分批遍历所有未隐藏帖子，batch 切片会被复用，需要保留的行自己拷贝
func (r *PostRepository) VisibleInBatches(ctx context.Context, size int, fn func(batch []model.Post) error) error {
	var batch []model.Post
	return r.DB.WithContext(ctx).
		Where("post_state = ?", model.PostStateNormal).
		FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
