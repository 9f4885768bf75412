package health

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSource consumes health feed updates from a Kafka topic and applies
// every message to the store.
type KafkaSource struct {
	Brokers []string
	Topic   string
	GroupID string
	Store   *Store
}

// Run reads messages until ctx is cancelled.
func (k *KafkaSource) Run(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.Brokers,
		GroupID:  k.GroupID,
		Topic:    k.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	defer reader.Close()

	k.Store.log.Info("consuming kafka health feed", "topic", k.Topic, "group", k.GroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if err := k.Store.ApplyRaw(msg.Value); err != nil {
			k.Store.log.Warn("kafka health update rejected",
				"topic", k.Topic, "offset", msg.Offset, "err", err)
		}
	}
}
