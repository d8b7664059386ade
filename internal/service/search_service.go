package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/mq"
	"Burrow_Hole/internal/search"
	"Burrow_Hole/pkg/logger"
)

// SearchEngine 由 search.Client 实现
type SearchEngine interface {
	EnsureCollections(ctx context.Context) error
	Create(ctx context.Context, collection string, doc any) error
	Patch(ctx context.Context, collection, id string, doc any) error
	Get(ctx context.Context, collection, id string, out any) error
	Delete(ctx context.Context, collection, id string) error
}

// SearchService 把 search topic 上的变更同步到搜索引擎
type SearchService struct {
	engine SearchEngine
}

func NewSearchService(engine SearchEngine) *SearchService {
	return &SearchService{engine: engine}
}

// Bootstrap 启动前建好三个 collection，已存在算成功
func (s *SearchService) Bootstrap(ctx context.Context) error {
	return s.engine.EnsureCollections(ctx)
}

// Handle 作为 mq.Handler 使用
func (s *SearchService) Handle(ctx context.Context, msg mq.Message) error {
	ev, err := event.DecodeSearch(msg.Value)
	if err != nil {
		return err
	}
	return s.Apply(ctx, ev)
}

func (s *SearchService) Apply(ctx context.Context, ev event.SearchEvent) error {
	switch e := ev.(type) {
	case event.CreateBurrow:
		return s.create(ctx, search.CollectionBurrows, search.NewBurrowDoc(e.BurrowData))
	case event.UpdateBurrow:
		doc := search.NewBurrowDoc(e.BurrowData)
		return s.update(ctx, search.CollectionBurrows, doc.ID, doc.UpdateTime, doc)
	case event.DeleteBurrow:
		return s.delete(ctx, search.CollectionBurrows, search.BurrowID(e.BurrowID))

	case event.CreatePost:
		return s.create(ctx, search.CollectionPosts, search.NewPostDoc(e.PostData))
	case event.UpdatePost:
		doc := search.NewPostDoc(e.PostData)
		return s.update(ctx, search.CollectionPosts, doc.ID, doc.UpdateTime, doc)
	case event.DeletePost:
		return s.delete(ctx, search.CollectionPosts, search.PostID(e.PostID))

	case event.CreateReply:
		return s.create(ctx, search.CollectionReplies, search.NewReplyDoc(e.ReplyData))
	case event.UpdateReply:
		doc := search.NewReplyDoc(e.ReplyData)
		return s.update(ctx, search.CollectionReplies, doc.ID, doc.UpdateTime, doc)
	case event.DeleteReply:
		return s.delete(ctx, search.CollectionReplies, search.ReplyID(e.PostID, e.ReplyID))
	}
	return fmt.Errorf("%w: %T", event.ErrUnknownKind, ev)
}

// create 重复投递时引擎返回已存在，当作成功
func (s *SearchService) create(ctx context.Context, collection string, doc any) error {
	err := s.engine.Create(ctx, collection, doc)
	if errors.Is(err, search.ErrConflict) {
		logger.Debug("search doc already exists", zap.String("collection", collection))
		return nil
	}
	return err
}

// update 只有新消息的 update_time 严格更大才覆盖，旧消息直接丢弃
func (s *SearchService) update(ctx context.Context, collection, id string, incoming int64, doc any) error {
	var stored search.Stamp
	err := s.engine.Get(ctx, collection, id, &stored)
	if errors.Is(err, search.ErrNotFound) {
		logger.Info("search doc missing, update skipped", zap.String("collection", collection), zap.String("id", id))
		return nil
	}
	if err != nil {
		return err
	}
	if incoming <= stored.UpdateTime {
		logger.Debug("stale search update ignored",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Int64("incoming", incoming),
			zap.Int64("stored", stored.UpdateTime))
		return nil
	}

	err = s.engine.Patch(ctx, collection, id, doc)
	if errors.Is(err, search.ErrNotFound) {
		// Get 和 Patch 之间被删了
		logger.Info("search doc deleted before patch", zap.String("collection", collection), zap.String("id", id))
		return nil
	}
	return err
}

func (s *SearchService) delete(ctx context.Context, collection, id string) error {
	err := s.engine.Delete(ctx, collection, id)
	if errors.Is(err, search.ErrNotFound) {
		logger.Info("search doc already gone", zap.String("collection", collection), zap.String("id", id))
		return nil
	}
	return err
}
