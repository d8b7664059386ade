package mq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrClosed = errors.New("subscriber closed")

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time

	raw kafka.Message
}

// Subscriber 某个 topic 的独占订阅
type Subscriber interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
	Close() error
}

type KafkaSubscriber struct {
	reader *kafka.Reader
}

func NewKafkaSubscriber(r *kafka.Reader) *KafkaSubscriber {
	return &KafkaSubscriber{reader: r}
}

func (s *KafkaSubscriber) Fetch(ctx context.Context) (Message, error) {
	m, err := s.reader.FetchMessage(ctx)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
		raw:       m,
	}, nil
}

func (s *KafkaSubscriber) Commit(ctx context.Context, msg Message) error {
	return s.reader.CommitMessages(ctx, msg.raw)
}

func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}

// MemorySubscriber 进程内订阅，用于本地调试和测试
type MemorySubscriber struct {
	topic string
	ch    chan Message

	mu        sync.Mutex
	next      int64
	committed []int64
	closed    bool
	done      chan struct{}
}

func NewMemorySubscriber(topic string, buffer int) *MemorySubscriber {
	return &MemorySubscriber{
		topic: topic,
		ch:    make(chan Message, buffer),
		done:  make(chan struct{}),
	}
}

// Publish 投递一条消息，返回分配的 offset
func (s *MemorySubscriber) Publish(key string, value []byte) int64 {
	s.mu.Lock()
	off := s.next
	s.next++
	s.mu.Unlock()

	s.ch <- Message{Topic: s.topic, Offset: off, Key: []byte(key), Value: value, Time: time.Now()}
	return off
}

func (s *MemorySubscriber) Fetch(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-s.done:
		return Message{}, ErrClosed
	case m := <-s.ch:
		return m, nil
	}
}

func (s *MemorySubscriber) Commit(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, msg.Offset)
	return nil
}

func (s *MemorySubscriber) Committed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.committed...)
}

func (s *MemorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}
