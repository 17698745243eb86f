package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

type Producer struct {
	sync sarama.SyncProducer
}

// NewConfig 生产与消费共用的配置
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Retry.Backoff = time.Second
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Consumer.Return.Errors = true
	return config
}

func NewProducer(brokers []string) (*Producer, error) {
	sp, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: producer: %w", err)
	}
	return NewProducerFrom(sp), nil
}

func NewProducerFrom(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

func (p *Producer) SendSync(topic string, key, data []byte, headers ...sarama.RecordHeader) error {
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(data),
		Headers: headers,
	}
	if key != nil {
		msg.Key = sarama.ByteEncoder(key)
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

// Publish payload 以 JSON 编码发送
func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeJSON(payload)
	if err != nil {
		return fmt.Errorf("kafka: encode %T: %w", payload, err)
	}
	return p.SendSync(topic, []byte(key), data)
}

func (p *Producer) Close() error {
	return p.sync.Close()
}
