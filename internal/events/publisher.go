// Package events publishes domain events about minted achievement NFTs.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// MintedEvent is emitted after an NFT row has been persisted.
type MintedEvent struct {
	NFTID                string    `json:"nft_id"`
	PatientID            string    `json:"patient_id"`
	ExerciseCompletionID string    `json:"exercise_completion_id"`
	TransactionHash      string    `json:"transaction_hash"`
	TokenID              *string   `json:"token_id,omitempty"`
	Rarity               string    `json:"rarity"`
	Signer               string    `json:"signer"`
	MintedAt             time.Time `json:"minted_at"`
}

// Publisher delivers MintedEvents.
type Publisher interface {
	PublishMinted(ctx context.Context, ev MintedEvent) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

// PublishMinted implements Publisher.
func (Nop) PublishMinted(context.Context, MintedEvent) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// MessageWriter is the subset of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON keyed by patient id, so one patient's
// events stay ordered within a partition.
type Kafka struct {
	w       MessageWriter
	timeout time.Duration
}

// NewKafka returns a publisher writing to topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return NewKafkaWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	})
}

// NewKafkaWithWriter wraps an existing writer.
func NewKafkaWithWriter(w MessageWriter) *Kafka {
	return &Kafka{w: w, timeout: 10 * time.Second}
}

// PublishMinted implements Publisher.
func (k *Kafka) PublishMinted(ctx context.Context, ev MintedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.PatientID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("nft.minted")},
		},
	})
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error { return k.w.Close() }

// New returns a Kafka publisher when brokers are set, otherwise Nop.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafka(brokers, topic)
}
