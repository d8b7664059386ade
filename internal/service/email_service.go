package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/metrics"
	"Burrow_Hole/internal/mq"
	"Burrow_Hole/internal/pkg"
	"Burrow_Hole/pkg/logger"
)

var ErrRateLimited = errors.New("email send limit exceeded")

// CodeStore 每个地址一条 "<count>:<code>"，由 redis.EmailRepository 实现
type CodeStore interface {
	Get(ctx context.Context, address string) (int, string, error)
	Set(ctx context.Context, address string, count int, code string) error
}

type LivenessChecker interface {
	IsLive(ctx context.Context, address string) (bool, error)
}

type Mailer interface {
	SendCode(ctx context.Context, address, code string) error
}

type EmailOptions struct {
	SendLimit int
	// TestMode 不查地址、固定验证码、不真正发信
	TestMode bool
}

type EmailService struct {
	codes    CodeStore
	liveness LivenessChecker
	mailer   Mailer
	opts     EmailOptions
	randCode func(n int) (string, error)
}

func NewEmailService(codes CodeStore, liveness LivenessChecker, mailer Mailer, opts EmailOptions) *EmailService {
	return &EmailService{
		codes:    codes,
		liveness: liveness,
		mailer:   mailer,
		opts:     opts,
		randCode: pkg.RandAlphanumeric,
	}
}

func (s *EmailService) Handle(ctx context.Context, msg mq.Message) error {
	ev, err := event.DecodeEmail(msg.Value)
	if err != nil {
		return err
	}
	return s.Apply(ctx, ev)
}

// Apply 超过发送次数静默丢弃，不向上返回 ErrRateLimited
func (s *EmailService) Apply(ctx context.Context, ev event.EmailEvent) error {
	address := strings.TrimSpace(ev.Address)
	n := ev.Kind.CodeLen()

	if s.opts.TestMode {
		code := FixedCode(n)
		if err := s.record(ctx, address, code); err != nil {
			return s.dropLimited(address, err)
		}
		logger.Info("test mode, email not sent", zap.String("kind", string(ev.Kind)), zap.String("address", address), zap.String("code", code))
		return nil
	}

	live, err := s.liveness.IsLive(ctx, address)
	if err != nil {
		return err
	}
	if !live {
		return s.recordDead(ctx, address)
	}

	code, err := s.randCode(n)
	if err != nil {
		return err
	}
	if err := s.record(ctx, address, code); err != nil {
		return s.dropLimited(address, err)
	}
	if err := s.mailer.SendCode(ctx, address, code); err != nil {
		return err
	}
	metrics.EmailsSent.Inc()
	logger.Info("verification email sent", zap.String("kind", string(ev.Kind)), zap.String("address", address))
	return nil
}

// record 读出次数 +1，超过上限拒绝；否则覆盖写并刷新过期时间。
// 读和写之间没有加锁，同一地址并发请求可能都通过
func (s *EmailService) record(ctx context.Context, address, code string) error {
	count, _, err := s.codes.Get(ctx, address)
	if err != nil {
		return err
	}
	next := count + 1
	if next > s.opts.SendLimit {
		return ErrRateLimited
	}
	return s.codes.Set(ctx, address, next, code)
}

// recordDead 不可投递的地址同样占用次数，已发出的验证码保持不变；
// 超限后写入超限标记，之后的正常请求也被拦下
func (s *EmailService) recordDead(ctx context.Context, address string) error {
	count, code, err := s.codes.Get(ctx, address)
	if err != nil {
		return err
	}
	next := count + 1
	if next > s.opts.SendLimit {
		metrics.EmailsLimited.Inc()
		logger.Info("dead address over limit", zap.String("address", address))
		return s.codes.Set(ctx, address, s.opts.SendLimit+1, code)
	}
	if err := s.codes.Set(ctx, address, next, code); err != nil {
		return err
	}
	logger.Info("address not deliverable, email skipped", zap.String("address", address))
	return nil
}

func (s *EmailService) dropLimited(address string, err error) error {
	if !errors.Is(err, ErrRateLimited) {
		return err
	}
	metrics.EmailsLimited.Inc()
	logger.Info("email rate limited, dropped", zap.String("address", address))
	return nil
}

// FixedCode 测试模式下的验证码
func FixedCode(n int) string {
	return strings.Repeat("0", n)
}
