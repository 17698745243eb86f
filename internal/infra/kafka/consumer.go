package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

type Consumer struct {
	group sarama.ConsumerGroup
	dlq   *Producer
	log   *zap.Logger
}

// NewConsumer dlq 可为 nil，此时处理失败的消息只记录日志
func NewConsumer(brokers []string, group string, dlq *Producer, log *zap.Logger) (*Consumer, error) {
	g, err := sarama.NewConsumerGroup(brokers, group, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: consumer group %s: %w", group, err)
	}
	return &Consumer{group: g, dlq: dlq, log: log}, nil
}

// Run 阻塞消费直到 ctx 结束
func (c *Consumer) Run(ctx context.Context, topics []string, fn HandlerFunc) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.Error("kafka consumer error", zap.Error(err))
		}
	}()

	handler := groupHandler{fn: fn, dlq: c.dlq, log: c.log}
	for {
		if err := c.group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	fn  HandlerFunc
	dlq *Producer
	log *zap.Logger
}

func (h groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h groupHandler) ConsumeClaim(s sarama.ConsumerGroupSession, c sarama.ConsumerGroupClaim) error {
	for msg := range c.Messages() {
		h.handle(s.Context(), msg)
		s.MarkMessage(msg, "")
	}
	return nil
}

// handle 处理失败的消息转入死信队列，不阻塞后续消息
func (h groupHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	err := h.fn(ctx, msg)
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.Error(err)}
	if h.dlq == nil {
		h.log.Error("handle message error", fields...)
		return
	}
	if dlqErr := SendDLQ(h.dlq, msg, err); dlqErr != nil {
		h.log.Error("send to dlq failed", append(fields, zap.NamedError("dlq", dlqErr))...)
		return
	}
	h.log.Warn("message moved to dlq", fields...)
}
