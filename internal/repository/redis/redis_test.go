package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

func TestNewClientPings(t *testing.T) {
	mr := setupRedis(t)
	c, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	_, err = NewClient("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestEmailRepositoryRoundTrip(t *testing.T) {
	mr := setupRedis(t)
	c, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	repo := NewEmailRepository(c, time.Hour)
	ctx := context.Background()

	count, code, err := repo.Get(ctx, "A@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, code)

	require.NoError(t, repo.Set(ctx, "A@pku.edu.cn", 2, "abc123"))
	count, code, err = repo.Get(ctx, "a@pku.edu.cn")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "abc123", code)

	assert.Equal(t, time.Hour, mr.TTL("email:code:a@pku.edu.cn"))
}

func TestParseCodeEntry(t *testing.T) {
	cases := []struct {
		in    string
		count int
		code  string
	}{
		{"3:abcdef", 3, "abcdef"},
		{"11:", 11, ""},
		{"garbage", 0, ""},
		{"x:abc", 0, ""},
		{"-1:abc", 0, ""},
	}
	for _, tc := range cases {
		count, code := ParseCodeEntry(tc.in)
		assert.Equal(t, tc.count, count, tc.in)
		assert.Equal(t, tc.code, code, tc.in)
	}
}

func TestTrendingSetIfAbsent(t *testing.T) {
	mr := setupRedis(t)
	c, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	repo := NewTrendingRepository(c, time.Hour)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.SetIfAbsent(ctx, []byte(`[1]`))
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = repo.SetIfAbsent(ctx, []byte(`[2]`))
	require.NoError(t, err)
	assert.False(t, stored)

	val, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(val))
	assert.Equal(t, time.Hour, mr.TTL(TrendingKey))

	// 临时 key 不残留
	assert.Len(t, mr.Keys(), 1)

	require.NoError(t, repo.Set(ctx, []byte(`[3]`)))
	val, _, _ = repo.Get(ctx)
	assert.Equal(t, `[3]`, string(val))
}
