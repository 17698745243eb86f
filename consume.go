package main

import (
	"context"
	"ddi/internal/config"
	"ddi/internal/domain/user"
	"ddi/internal/infra/kafka"
	"ddi/internal/infra/logger"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var consumeGroup string

func init() {
	consumeCmd.Flags().StringVar(&consumeGroup, "group", "ddi-user-events", "Consumer group id")
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume user events, failures go to the dead letter topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.FromEnviron(envFiles...)
		if err != nil {
			return err
		}
		cfg, err := config.Load(s)
		if err != nil {
			return err
		}
		if len(cfg.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is empty")
		}
		log, err := logger.NewZap(cfg.Log.Dir, cfg.App.Env)
		if err != nil {
			return err
		}
		defer log.Sync()

		dlq, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer dlq.Close()
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, consumeGroup, dlq, log)
		if err != nil {
			return err
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info("consuming", zap.String("topic", cfg.Kafka.Topic), zap.String("group", consumeGroup))
		return consumer.Run(ctx, []string{cfg.Kafka.Topic}, registeredHandler(log))
	},
}

// registeredHandler 解码失败返回错误，由消费者转入死信队列
func registeredHandler(log *zap.Logger) kafka.HandlerFunc {
	return func(_ context.Context, msg *sarama.ConsumerMessage) error {
		var event user.RegisteredEvent
		if err := kafka.DecodeJSON(msg.Value, &event); err != nil {
			return fmt.Errorf("decode registered event: %w", err)
		}
		if event.ID == "" {
			return errors.New("registered event without id")
		}
		log.Info("user registered",
			zap.String("id", event.ID),
			zap.String("user_name", event.UserName),
			zap.Time("at", event.At),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}
}
