package mysql

import (
	"context"
	"errors"

	"Burrow_Hole/internal/model"

	"gorm.io/gorm"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrBurrowNotFound = errors.New("burrow not found")
	ErrAlreadyActive  = errors.New("relation already active")
)

// counterKind 点赞和收藏只差表和计数列
type counterKind struct {
	column string
	row    func(uid, postID uint64) any
	model  any
}

var (
	likeKind = counterKind{
		column: "like_num",
		row:    func(uid, postID uint64) any { return &model.PostLike{UID: uid, PostID: postID} },
		model:  &model.PostLike{},
	}
	collectionKind = counterKind{
		column: "collection_num",
		row:    func(uid, postID uint64) any { return &model.PostCollection{UID: uid, PostID: postID} },
		model:  &model.PostCollection{},
	}
)

type RelationRepository struct {
	DB *gorm.DB
}

func (r *RelationRepository) ActivateLike(ctx context.Context, uid, postID uint64) error {
	return r.activate(ctx, likeKind, uid, postID)
}

func (r *RelationRepository) DeactivateLike(ctx context.Context, uid, postID uint64) (bool, error) {
	return r.deactivate(ctx, likeKind, uid, postID)
}

func (r *RelationRepository) ActivateCollection(ctx context.Context, uid, postID uint64) error {
	return r.activate(ctx, collectionKind, uid, postID)
}

func (r *RelationRepository) DeactivateCollection(ctx context.Context, uid, postID uint64) (bool, error) {
	return r.deactivate(ctx, collectionKind, uid, postID)
}

// activate 插入关系行和计数+1 在同一事务，帖子不存在整体回滚
func (r *RelationRepository) activate(ctx context.Context, k counterKind, uid, postID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 唯一索引 (uid, post_id) 挡住重复激活
		if err := tx.Create(k.row(uid, postID)).Error; err != nil {
			return translateDup(err)
		}
		res := tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn(k.column, gorm.Expr(k.column+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// deactivate 删除和计数-1 是两条独立语句，中间崩溃这次 -1 就永久丢失
func (r *RelationRepository) deactivate(ctx context.Context, k counterKind, uid, postID uint64) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("uid = ? AND post_id = ?", uid, postID).
		Delete(k.model)
	if res.Error != nil {
		return false, res.Error
	}
	// 未删除任何行 -> 计数不动
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn(k.column, gorm.Expr("CASE WHEN "+k.column+" > 0 THEN "+k.column+" - 1 ELSE 0 END")).
		Error; err != nil {
		return true, err
	}
	return true, nil
}

func translateDup(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyActive
	}
	return err
}
