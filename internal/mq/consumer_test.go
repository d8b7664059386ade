package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Burrow_Hole/internal/metrics"
)

func runAsync(ctx context.Context, c *Consumer) <-chan error {
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return done
}

func TestConsumerAckBeforeProcess(t *testing.T) {
	sub := NewMemorySubscriber("search", 8)
	var (
		mu            sync.Mutex
		seenCommitted [][]int64
		handled       int
	)
	c := NewConsumer("search", sub, true, func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		seenCommitted = append(seenCommitted, sub.Committed())
		handled++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, c)

	sub.Publish("k", []byte("a"))
	sub.Publish("k", []byte("b"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// 处理第 n 条时它自己的 offset 已经提交
	assert.Equal(t, []int64{0}, seenCommitted[0])
	assert.Equal(t, []int64{0, 1}, seenCommitted[1])
}

func TestConsumerAckAfterProcess(t *testing.T) {
	sub := NewMemorySubscriber("relation", 8)
	var seen []int64
	c := NewConsumer("relation", sub, false, func(ctx context.Context, msg Message) error {
		seen = append(seen, int64(len(sub.Committed())))
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, c)
	sub.Publish("k", []byte("a"))

	require.Eventually(t, func() bool { return len(sub.Committed()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int64{0}, seen)
}

func TestConsumerKeepsGoingAfterHandlerError(t *testing.T) {
	sub := NewMemorySubscriber("email", 8)
	var mu sync.Mutex
	var values []string
	c := NewConsumer("email", sub, true, func(ctx context.Context, msg Message) error {
		mu.Lock()
		values = append(values, string(msg.Value))
		mu.Unlock()
		if string(msg.Value) == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, c)
	sub.Publish("k", []byte("bad"))
	sub.Publish("k", []byte("good"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(values) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"bad", "good"}, values)
}

func TestConsumerExitsOnBusFailure(t *testing.T) {
	sub := NewMemorySubscriber("search", 1)
	c := NewConsumer("search", sub, true, func(ctx context.Context, msg Message) error { return nil })

	require.NoError(t, sub.Close())
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConsumerShutdownMidMessageIsNotAFailure(t *testing.T) {
	sub := NewMemorySubscriber("shutdown", 1)
	started := make(chan struct{})
	c := NewConsumer("shutdown", sub, true, func(ctx context.Context, msg Message) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	before := testutil.ToFloat64(metrics.MessagesFailed.WithLabelValues("shutdown"))
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, c)
	sub.Publish("k", []byte("slow"))

	<-started
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, before, testutil.ToFloat64(metrics.MessagesFailed.WithLabelValues("shutdown")))
}
