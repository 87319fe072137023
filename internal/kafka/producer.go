// Package kafka publishes encoded message batches to Kafka, keyed by
// route identifier so one partition carries one feed.
package kafka

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/btr-supply/mitch"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond, // Low latency
		Async:        true,
	}
	return &Producer{writer: w}
}

// Key renders a route identifier as a 4-byte little-endian message key,
// matching the wire byte order of every other identifier.
func Key(route mitch.RouteID) []byte {
	k := make([]byte, 4)
	binary.LittleEndian.PutUint32(k, uint32(route))
	return k
}

// Publish writes one encoded batch under the route's key.
func (p *Producer) Publish(route mitch.RouteID, frame []byte) error {
	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   Key(route),
			Value: frame,
		},
	)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
