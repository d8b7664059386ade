package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"Burrow_Hole/internal/metrics"
	"Burrow_Hole/internal/model"
	"Burrow_Hole/internal/tracing"
	"Burrow_Hole/pkg/logger"
)

const (
	DefaultTrendingInterval = 15 * time.Minute
	DefaultTrendingSize     = 50

	trendingBatch = 500
)

// TrendingSource 由 mysql.PostRepository 实现
type TrendingSource interface {
	VisibleInBatches(ctx context.Context, size int, fn func(batch []model.Post) error) error
}

// TrendingCache 由 redis.TrendingRepository 实现
type TrendingCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, val []byte) error
	SetIfAbsent(ctx context.Context, val []byte) (bool, error)
}

type TrendingOptions struct {
	Interval time.Duration
	Size     int
}

// TrendingPost 缓存里的一条，不带分数，排名不变时两次计算结果逐字节相同
type TrendingPost struct {
	PostID        uint64   `json:"post_id"`
	BurrowID      uint64   `json:"burrow_id"`
	Title         string   `json:"title"`
	Section       []string `json:"section"`
	Tag           []string `json:"tag"`
	PostLen       int64    `json:"post_len"`
	LikeNum       int64    `json:"like_num"`
	CollectionNum int64    `json:"collection_num"`
	CreateTime    int64    `json:"create_time"`
	UpdateTime    int64    `json:"update_time"`
}

type TrendingService struct {
	posts TrendingSource
	cache TrendingCache
	opts  TrendingOptions
	now   func() time.Time
}

func NewTrendingService(posts TrendingSource, cache TrendingCache, opts TrendingOptions) *TrendingService {
	if opts.Interval <= 0 {
		opts.Interval = DefaultTrendingInterval
	}
	if opts.Size <= 0 {
		opts.Size = DefaultTrendingSize
	}
	return &TrendingService{posts: posts, cache: cache, opts: opts, now: time.Now}
}

// WithClock 测试用
func (s *TrendingService) WithClock(now func() time.Time) *TrendingService {
	s.now = now
	return s
}

// Score 回复数取对数，点赞收藏直接相加，再按发帖和最后更新距今的小时数衰减
func Score(p model.Post, now time.Time) float64 {
	replies := math.Log(float64(max(p.PostLen, 1)))
	hot := replies + float64(p.LikeNum) + float64(p.CollectionNum)

	sinceCreate := math.Max(now.Sub(p.CreatedAt).Hours(), 0)
	sinceUpdate := math.Max(now.Sub(p.UpdatedAt).Hours(), 0)
	decay := math.Pow(sinceCreate+2, 1.2) + math.Pow(sinceUpdate+1, 0.8)
	return hot / decay
}

type scoredPost struct {
	post  model.Post
	score float64
}

// Compute 定时任务和缓存回填共用。遍历全部未隐藏帖子，只保留当前前 Size 名
func (s *TrendingService) Compute(ctx context.Context) ([]byte, error) {
	now := s.now()
	top := make([]scoredPost, 0, s.opts.Size+trendingBatch)
	err := s.posts.VisibleInBatches(ctx, trendingBatch, func(batch []model.Post) error {
		for _, p := range batch {
			top = append(top, scoredPost{post: p, score: Score(p, now)})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].score != top[j].score {
				return top[i].score > top[j].score
			}
			return top[i].post.ID > top[j].post.ID
		})
		if len(top) > s.opts.Size {
			top = top[:s.opts.Size]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]TrendingPost, 0, len(top))
	for _, sp := range top {
		p := sp.post
		out = append(out, TrendingPost{
			PostID:        p.ID,
			BurrowID:      p.BurrowID,
			Title:         p.Title,
			Section:       splitList(p.Section),
			Tag:           splitList(p.Tag),
			PostLen:       p.PostLen,
			LikeNum:       p.LikeNum,
			CollectionNum: p.CollectionNum,
			CreateTime:    p.CreatedAt.Unix(),
			UpdateTime:    p.UpdatedAt.Unix(),
		})
	}
	return json.Marshal(out)
}

// Refresh 重新计算并覆盖缓存
func (s *TrendingService) Refresh(ctx context.Context) error {
	ctx, span := tracing.Tracer().Start(ctx, "trending.refresh")
	defer span.End()

	val, err := s.Compute(ctx)
	if err == nil {
		err = s.cache.Set(ctx, val)
	}
	if err != nil {
		metrics.TrendingRuns.WithLabelValues("error").Inc()
		span.RecordError(err)
		return err
	}
	metrics.TrendingRuns.WithLabelValues("ok").Inc()
	return nil
}

// Populate 读路径：命中直接返回，未命中算一份写回，写回时已有人写过则以缓存为准
func (s *TrendingService) Populate(ctx context.Context) ([]byte, error) {
	val, ok, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return val, nil
	}

	val, err = s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.cache.SetIfAbsent(ctx, val)
	if err != nil {
		logger.Warn("trending populate write failed", zap.Error(err))
		return val, nil
	}
	if !stored {
		if cached, ok, err := s.cache.Get(ctx); err == nil && ok {
			return cached, nil
		}
	}
	return val, nil
}

// Run ticker 不会在启动时立刻触发，第一次计算发生在一个周期之后；
// 单次失败只记日志，旧缓存继续有效
func (s *TrendingService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	logger.Info("trending scheduler started", zap.Duration("interval", s.opts.Interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("trending scheduler stopped")
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("trending refresh failed", zap.Error(err))
			}
		}
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
