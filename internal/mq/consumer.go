package mq

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"Burrow_Hole/internal/metrics"
	"Burrow_Hole/internal/tracing"
	"Burrow_Hole/pkg/logger"
)

type Handler func(ctx context.Context, msg Message) error

// Consumer 单 topic 串行消费：一次只处理一条，处理失败只记日志，
// 只有 broker 出错或 ctx 取消才退出
type Consumer struct {
	name      string
	sub       Subscriber
	handle    Handler
	ackBefore bool
}

// NewConsumer ackBefore=true 时先提交再处理，处理中途崩溃会丢掉这条消息，
// 但坏消息不会被反复投递；false 时处理完再提交
func NewConsumer(name string, sub Subscriber, ackBefore bool, h Handler) *Consumer {
	return &Consumer{name: name, sub: sub, handle: h, ackBefore: ackBefore}
}

func (c *Consumer) Name() string { return c.name }

func (c *Consumer) Run(ctx context.Context) error {
	defer c.sub.Close()
	logger.Info("consumer started", zap.String("topic", c.name), zap.Bool("ack_before_process", c.ackBefore))

	for {
		msg, err := c.sub.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Info("consumer stopped", zap.String("topic", c.name))
				return nil
			}
			logger.Error("consumer fetch failed", zap.String("topic", c.name), zap.Error(err))
			return err
		}
		metrics.MessagesConsumed.WithLabelValues(c.name).Inc()

		if c.ackBefore {
			c.commit(ctx, msg)
		}

		c.process(ctx, msg)

		if !c.ackBefore {
			c.commit(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg Message) {
	mCtx, span := tracing.Tracer().Start(ctx, c.name+".message")
	span.SetAttributes(
		attribute.String("messaging.destination", c.name),
		attribute.Int64("messaging.offset", msg.Offset),
	)
	defer span.End()

	if err := c.handle(mCtx, msg); err != nil {
		if ctx.Err() != nil {
			// 停机时正在处理的消息直接放弃
			logger.Info("message abandoned on shutdown",
				zap.String("topic", c.name),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			return
		}
		metrics.MessagesFailed.WithLabelValues(c.name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("message processing failed",
			zap.String("topic", c.name),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
	}
}

func (c *Consumer) commit(ctx context.Context, msg Message) {
	if err := c.sub.Commit(ctx, msg); err != nil && ctx.Err() == nil {
		logger.Warn("commit failed, message may be redelivered",
			zap.String("topic", c.name), zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
