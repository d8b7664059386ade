package mysql

import (
	"context"

	"Burrow_Hole/internal/model"

	"gorm.io/gorm"
)

type BurrowRepository struct {
	DB *gorm.DB
}

func (r *BurrowRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Burrow{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
