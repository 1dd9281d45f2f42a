package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes notifications to a storefront event topic. Writes
// happen on a detached goroutine with their own timeout so a slow broker
// never blocks a basket mutation; failures are logged and dropped.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *log.Logger
}

func NewKafka(brokers []string, topic string, logger *log.Logger) *KafkaNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

func (n *KafkaNotifier) Notify(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		n.logger.Printf("notify: encode event: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg := kafka.Message{
			Key:   []byte(e.Recipient),
			Value: payload,
		}
		if err := n.writer.WriteMessages(ctx, msg); err != nil {
			n.logger.Printf("notify: publish recipient=%s: %v", e.Recipient, err)
		}
	}()
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
