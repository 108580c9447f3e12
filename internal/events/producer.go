// Package events publishes domain events to Kafka. Email notification
// dispatch is handled by a downstream consumer; this service only announces
// that a submission arrived and who asked to be told.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// ProducerConfig describes how to reach the event topic.
type ProducerConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Validate ensures the configuration is usable.
func (cfg ProducerConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return errors.New("events: at least one broker must be configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errors.New("events: topic must be provided")
	}
	return nil
}

func (cfg ProducerConfig) normalize() ProducerConfig {
	out := cfg
	out.Topic = strings.TrimSpace(out.Topic)
	out.ClientID = strings.TrimSpace(out.ClientID)
	brokers := make([]string, 0, len(out.Brokers))
	for _, broker := range out.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	out.Brokers = brokers
	return out
}

// Producer wraps a Kafka writer. A nil Producer is valid and drops every
// publish, so event delivery stays optional.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer constructs a Kafka producer.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	normalized := cfg.normalize()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(normalized.Brokers...),
		Topic:                  normalized.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           5 * time.Second,
		BatchSize:              1,
	}
	if normalized.ClientID != "" {
		writer.Transport = &kafka.Transport{ClientID: normalized.ClientID}
	}

	log.Infof("events: producer ready (topic=%s brokers=%s)", normalized.Topic, strings.Join(normalized.Brokers, ","))
	return &Producer{writer: writer}, nil
}

// SubmissionReceived is emitted once per accepted form submission.
type SubmissionReceived struct {
	SubmissionID string    `json:"submissionId"`
	FormID       string    `json:"formId"`
	FormSlug     string    `json:"formSlug"`
	NotifyEmails []string  `json:"notifyEmails,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// PublishSubmissionReceived sends the event keyed by submission id.
func (p *Producer) PublishSubmissionReceived(ctx context.Context, event SubmissionReceived) error {
	if p == nil || p.writer == nil {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal submission event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SubmissionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("submission.received")},
			{Key: "submitted_at", Value: []byte(event.SubmittedAt.Format(time.RFC3339Nano))},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
