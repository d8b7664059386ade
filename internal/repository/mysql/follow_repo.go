package mysql

import (
	"context"

	"Burrow_Hole/internal/model"

	"gorm.io/gorm"
)

type FollowRepository struct {
	DB *gorm.DB
}

// Activate 插入关注行并在同一事务里确认洞存在，不存在则回滚插入；关注不维护计数
func (r *FollowRepository) Activate(ctx context.Context, uid, burrowID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.UserFollow{UID: uid, BurrowID: burrowID}).Error; err != nil {
			return translateDup(err)
		}
		bRepo := &BurrowRepository{DB: tx}
		ok, err := bRepo.Exists(ctx, burrowID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBurrowNotFound
		}
		return nil
	})
}

// Deactivate 幂等删除，返回是否真的删掉了一行
func (r *FollowRepository) Deactivate(ctx context.Context, uid, burrowID uint64) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("uid = ? AND burrow_id = ?", uid, burrowID).
		Delete(&model.UserFollow{})
	return res.RowsAffected > 0, res.Error
}
