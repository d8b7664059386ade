package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/repository/redis"
)

type stubLiveness struct {
	live  bool
	err   error
	calls int
}

func (s *stubLiveness) IsLive(context.Context, string) (bool, error) {
	s.calls++
	return s.live, s.err
}

type recordMailer struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
}

func (m *recordMailer) SendCode(_ context.Context, address, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = map[string][]string{}
	}
	m.codes[address] = append(m.codes[address], code)
	return nil
}

func (m *recordMailer) sent(address string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[address]
}

func setupEmail(t *testing.T, live *stubLiveness, opts EmailOptions) (*EmailService, *redis.EmailRepository, *recordMailer) {
	t.Helper()
	_, c := setupRedis(t)
	repo := redis.NewEmailRepository(c, time.Hour)
	mailer := &recordMailer{}
	return NewEmailService(repo, live, mailer, opts), repo, mailer
}

func TestEmailRateLimit(t *testing.T) {
	const limit = 3
	svc, repo, mailer := setupEmail(t, &stubLiveness{live: true}, EmailOptions{SendLimit: limit})
	ctx := context.Background()
	ev := event.EmailEvent{Kind: event.EmailSign, Address: "a@pku.edu.cn"}

	for i := 0; i < limit; i++ {
		require.NoError(t, svc.Apply(ctx, ev))
	}
	require.Len(t, mailer.sent("a@pku.edu.cn"), limit)

	// 第 N+1 次静默丢弃
	require.NoError(t, svc.Apply(ctx, ev))
	assert.Len(t, mailer.sent("a@pku.edu.cn"), limit)

	count, code, err := repo.Get(ctx, "a@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, limit, count)
	assert.Equal(t, mailer.sent("a@pku.edu.cn")[limit-1], code)
}

func TestEmailCodeLength(t *testing.T) {
	svc, _, mailer := setupEmail(t, &stubLiveness{live: true}, EmailOptions{SendLimit: 10})
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, event.EmailEvent{Kind: event.EmailSign, Address: "s@pku.edu.cn"}))
	require.NoError(t, svc.Apply(ctx, event.EmailEvent{Kind: event.EmailReset, Address: "r@pku.edu.cn"}))

	assert.Len(t, mailer.sent("s@pku.edu.cn")[0], 6)
	assert.Len(t, mailer.sent("r@pku.edu.cn")[0], 10)
}

func TestEmailDeadAddressConsumesSlot(t *testing.T) {
	const limit = 2
	live := &stubLiveness{live: false}
	svc, repo, mailer := setupEmail(t, live, EmailOptions{SendLimit: limit})
	ctx := context.Background()
	ev := event.EmailEvent{Kind: event.EmailSign, Address: "ghost@pku.edu.cn"}

	require.NoError(t, svc.Apply(ctx, ev))
	count, _, err := repo.Get(ctx, "ghost@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.Apply(ctx, ev))
	require.NoError(t, svc.Apply(ctx, ev))
	count, code, err := repo.Get(ctx, "ghost@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, limit+1, count)
	assert.Empty(t, code)
	assert.Empty(t, mailer.sent("ghost@pku.edu.cn"))

	// 地址恢复可达后仍被限流
	live.live = true
	require.NoError(t, svc.Apply(ctx, ev))
	assert.Empty(t, mailer.sent("ghost@pku.edu.cn"))
}

func TestEmailDeadCheckKeepsIssuedCode(t *testing.T) {
	live := &stubLiveness{live: true}
	svc, repo, mailer := setupEmail(t, live, EmailOptions{SendLimit: 5})
	ctx := context.Background()
	ev := event.EmailEvent{Kind: event.EmailSign, Address: "k@pku.edu.cn"}

	require.NoError(t, svc.Apply(ctx, ev))
	require.Len(t, mailer.sent("k@pku.edu.cn"), 1)
	issued := mailer.sent("k@pku.edu.cn")[0]

	// 一次探测失败不能让已发出的验证码失效
	live.live = false
	require.NoError(t, svc.Apply(ctx, ev))
	count, code, err := repo.Get(ctx, "k@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, issued, code)
}

func TestEmailTestModeUsesFixedCode(t *testing.T) {
	live := &stubLiveness{live: true}
	svc, repo, mailer := setupEmail(t, live, EmailOptions{SendLimit: 10, TestMode: true})
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, event.EmailEvent{Kind: event.EmailReset, Address: "t@pku.edu.cn"}))
	_, code, err := repo.Get(ctx, "t@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, "0000000000", code)
	assert.Equal(t, 0, live.calls)
	assert.Empty(t, mailer.sent("t@pku.edu.cn"))
}

func TestEmailErrorsSurface(t *testing.T) {
	ctx := context.Background()
	ev := event.EmailEvent{Kind: event.EmailSign, Address: "e@pku.edu.cn"}

	svc, repo, _ := setupEmail(t, &stubLiveness{err: errors.New("dns timeout")}, EmailOptions{SendLimit: 10})
	assert.Error(t, svc.Apply(ctx, ev))
	count, _, _ := repo.Get(ctx, "e@pku.edu.cn")
	assert.Equal(t, 0, count)

	svc, _, mailer := setupEmail(t, &stubLiveness{live: true}, EmailOptions{SendLimit: 10})
	mailer.err = errors.New("smtp down")
	assert.Error(t, svc.Apply(ctx, ev))

	assert.Error(t, svc.Handle(ctx, message([]byte(`{"kind":"Sign"}`))))
}
