package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerConfigValidate(t *testing.T) {
	cfg := ProducerConfig{Brokers: []string{"localhost:9092"}, Topic: "cms.submissions"}
	require.NoError(t, cfg.Validate())

	assert.Error(t, ProducerConfig{Topic: "cms.submissions"}.Validate())
	assert.Error(t, ProducerConfig{Brokers: []string{"localhost:9092"}}.Validate())
}

func TestNewProducerRejectsBadConfig(t *testing.T) {
	_, err := NewProducer(ProducerConfig{})
	assert.Error(t, err)
}

func TestNilProducerIsNoop(t *testing.T) {
	var p *Producer
	err := p.PublishSubmissionReceived(context.Background(), SubmissionReceived{
		SubmissionID: "s1",
		FormID:       "f1",
		FormSlug:     "contact",
		SubmittedAt:  time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}
