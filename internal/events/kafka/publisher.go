package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewPublisher returns a publisher writing to the given brokers. The topic is
// chosen per message, so one writer serves every ledger topic. Publish
// writes a single message and waits for it, so the batch window is kept far
// below kafka-go's 1s default.
func NewPublisher(brokers []string, compression kafka.Compression) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			Compression:            compression,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		timeout: 5 * time.Second,
	}
}

// ParseCompression maps a config value to a kafka-go codec.
// The empty string and "none" disable compression.
func ParseCompression(name string) (kafka.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("unknown kafka compression %q", name)
	}
}

// Publish encodes event as JSON and writes it to topic. Messages are keyed
// by account id when the event carries one, so an account's events land in
// one partition. Callers that need ordering must call Publish in order.
func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.writer.WriteMessages(
		ctx,
		kafka.Message{
			Topic: topic,
			Key:   accountKey(data),
			Value: data,
		},
	)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func accountKey(data []byte) []byte {
	var keyed struct {
		AccountID string `json:"account_id"`
	}
	if err := json.Unmarshal(data, &keyed); err != nil || keyed.AccountID == "" {
		return nil
	}
	return []byte(keyed.AccountID)
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
