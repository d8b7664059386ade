package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, AckBeforeProcess, cfg.Bus.AckMode)
	assert.Equal(t, "search", cfg.Bus.Topics.Search)
	assert.Equal(t, 4*time.Hour, cfg.Email.CodeTTL)
	assert.Equal(t, 15*time.Minute, cfg.Trending.Interval)
	assert.Equal(t, time.Hour, cfg.Trending.TTL)
	assert.Equal(t, 50, cfg.Trending.Size)
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Grace)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BURROW_BUS_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BURROW_EMAIL_SEND_LIMIT", "3")
	t.Setenv("BURROW_SEARCH_API_KEY", "xyz")
	t.Setenv("BURROW_TRENDING_INTERVAL", "1m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Bus.Brokers)
	assert.Equal(t, 3, cfg.Email.SendLimit)
	assert.Equal(t, "xyz", cfg.Search.APIKey)
	assert.Equal(t, time.Minute, cfg.Trending.Interval)
}

func TestValidateRejectsUnknownAckMode(t *testing.T) {
	t.Setenv("BURROW_BUS_ACK_MODE", "never")

	_, err := Load("")
	assert.Error(t, err)
}
