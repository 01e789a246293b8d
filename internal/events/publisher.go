// Package events streams applied-transaction events to Kafka for
// downstream analytics consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/config"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
)

type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewPublisher returns nil when no brokers are configured; a nil Publisher
// is a no-op.
func NewPublisher(cfg config.KafkaConfig, log *slog.Logger) *Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info("kafka brokers not configured, event publishing disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Publisher{writer: writer, log: log}
}

// PublishTransactionApplied is best-effort: the transaction has already
// committed, so a publish failure is logged and dropped. Messages are keyed
// by (user, coin) so per-pair ordering survives partitioning.
func (p *Publisher) PublishTransactionApplied(ctx context.Context, event models.TransactionAppliedEvent) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal transaction event", "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d:%d", event.UserID, event.CoinID)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("failed to publish transaction event", "error", err, "event_id", event.EventID)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
