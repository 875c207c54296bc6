package kafka

import (
	"github.com/segmentio/kafka-go"
)

// NewWriter returns the writer the outbox dispatcher publishes checkout
// events through. Messages are keyed by checkout id so one checkout's events
// stay on one partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
