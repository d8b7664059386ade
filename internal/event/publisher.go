package event

import (
	"context"

	"go.uber.org/zap"

	"Burrow_Hole/pkg/logger"
)

// Sender 由 pkg.KafkaProducer 实现
type Sender interface {
	Send(ctx context.Context, key string, value []byte) error
}

// Publisher 写库成功之后由业务代码调用，尽力投递：失败只记日志，不重试
type Publisher struct {
	search   Sender
	relation Sender
	email    Sender
}

func NewPublisher(search, relation, email Sender) *Publisher {
	return &Publisher{search: search, relation: relation, email: email}
}

func (p *Publisher) Search(ctx context.Context, ev SearchEvent) {
	b, err := EncodeSearch(ev)
	if err != nil {
		logger.Error("encode search event", zap.String("kind", string(ev.Kind())), zap.Error(err))
		return
	}
	p.send(ctx, p.search, "search", ev.Key(), b)
}

func (p *Publisher) Relation(ctx context.Context, ev RelationEvent) {
	b, err := EncodeRelation(ev)
	if err != nil {
		logger.Error("encode relation event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		return
	}
	p.send(ctx, p.relation, "relation", ev.Key(), b)
}

func (p *Publisher) Email(ctx context.Context, ev EmailEvent) {
	b, err := EncodeEmail(ev)
	if err != nil {
		logger.Error("encode email event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		return
	}
	p.send(ctx, p.email, "email", ev.Key(), b)
}

func (p *Publisher) send(ctx context.Context, s Sender, topic, key string, value []byte) {
	if s == nil {
		return
	}
	if err := s.Send(ctx, key, value); err != nil {
		logger.Warn("publish event failed, dropped", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
	}
}
