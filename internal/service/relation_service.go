package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/mq"
	"Burrow_Hole/pkg/logger"
)

// CounterStore 点赞/收藏，由 mysql.RelationRepository 实现
type CounterStore interface {
	ActivateLike(ctx context.Context, uid, postID uint64) error
	DeactivateLike(ctx context.Context, uid, postID uint64) (bool, error)
	ActivateCollection(ctx context.Context, uid, postID uint64) error
	DeactivateCollection(ctx context.Context, uid, postID uint64) (bool, error)
}

// FollowStore 由 mysql.FollowRepository 实现
type FollowStore interface {
	Activate(ctx context.Context, uid, burrowID uint64) error
	Deactivate(ctx context.Context, uid, burrowID uint64) (bool, error)
}

// RelationService 消费 relation topic，维护关系表和帖子计数
type RelationService struct {
	counters CounterStore
	follows  FollowStore
}

func NewRelationService(counters CounterStore, follows FollowStore) *RelationService {
	return &RelationService{counters: counters, follows: follows}
}

func (s *RelationService) Handle(ctx context.Context, msg mq.Message) error {
	ev, err := event.DecodeRelation(msg.Value)
	if err != nil {
		return err
	}
	return s.Apply(ctx, ev)
}

// Apply 激活失败(重复、目标不存在)原样返回，由消费循环记日志后丢弃
func (s *RelationService) Apply(ctx context.Context, ev event.RelationEvent) error {
	var (
		removed bool
		err     error
	)
	switch ev.Kind {
	case event.ActivateLike:
		err = s.counters.ActivateLike(ctx, ev.UID, ev.TargetID)
	case event.DeactivateLike:
		removed, err = s.counters.DeactivateLike(ctx, ev.UID, ev.TargetID)
	case event.ActivateCollection:
		err = s.counters.ActivateCollection(ctx, ev.UID, ev.TargetID)
	case event.DeactivateCollection:
		removed, err = s.counters.DeactivateCollection(ctx, ev.UID, ev.TargetID)
	case event.ActivateFollow:
		err = s.follows.Activate(ctx, ev.UID, ev.TargetID)
	case event.DeactivateFollow:
		removed, err = s.follows.Deactivate(ctx, ev.UID, ev.TargetID)
	default:
		return fmt.Errorf("%w: %s", event.ErrUnknownKind, ev.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s uid=%d target=%d: %w", ev.Kind, ev.UID, ev.TargetID, err)
	}

	logger.Debug("relation applied",
		zap.String("kind", string(ev.Kind)),
		zap.Uint64("uid", ev.UID),
		zap.Uint64("target", ev.TargetID),
		zap.Bool("removed", removed))
	return nil
}
