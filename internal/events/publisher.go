// Package events publishes ingestion and generation notifications over NSQ.
// The publisher is optional: with no nsqd configured every publish is a no-op,
// and publish failures are logged rather than failing the request.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
)

const (
	TopicResumeIndexed   = "resume.indexed"
	TopicLetterGenerated = "letter.generated"
)

type Publisher struct {
	producer *nsq.Producer
}

// NewPublisher connects to nsqd at host, or returns a disabled publisher when
// host is empty.
func NewPublisher(host string) (*Publisher, error) {
	if host == "" {
		return &Publisher{}, nil
	}

	producer, err := nsq.NewProducer(host, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer}, nil
}

func (p *Publisher) Stop() {
	if p != nil && p.producer != nil {
		p.producer.Stop()
	}
}

func (p *Publisher) ResumeIndexed(ctx context.Context, docID string, chunks int) {
	p.publish(ctx, TopicResumeIndexed, map[string]interface{}{
		"doc_id": docID,
		"chunks": chunks,
	})
}

func (p *Publisher) LetterGenerated(ctx context.Context, jobTitle string) {
	p.publish(ctx, TopicLetterGenerated, map[string]interface{}{
		"job_title": jobTitle,
	})
}

func (p *Publisher) publish(ctx context.Context, topic string, fields map[string]interface{}) {
	if p == nil || p.producer == nil {
		return
	}

	fields["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	fields["correlation_id"] = middleware.GetCorrelationID(ctx)

	payload, err := json.Marshal(fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal event", "topic", topic, "error", err)
		return
	}

	if err := p.producer.Publish(topic, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "topic", topic, "error", err)
		return
	}
	slog.InfoContext(ctx, "event published", "topic", topic)
}
