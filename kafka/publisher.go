// Package kafka publishes discovered PDF URLs to a Kafka topic so a
// separate downloader can consume them.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/sitepdf"
	"github.com/segmentio/kafka-go"
)

var _ sitepdf.PDFPublisher = (*Publisher)(nil)

// PDFMessage is the JSON value of every published message.
type PDFMessage struct {
	RunID   string `json:"runId"`
	BaseURL string `json:"baseUrl"`
	URL     string `json:"url"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher wraps a Kafka writer for publishing PDF URLs.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewPublisher creates a Kafka publisher for the given broker and topic.
func NewPublisher(broker, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: false,
	})
}

// NewPublisherWithWriter builds a publisher using a custom writer (tests).
func NewPublisherWithWriter(writer messageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

// Close shuts down the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// PublishPDFs writes one message per PDF URL, keyed by the URL so repeat
// crawls of a site land on the same partition.
func (p *Publisher) PublishPDFs(ctx context.Context, runID string, r *sitepdf.Report) error {
	if len(r.PDFURLs) == 0 {
		return nil
	}

	now := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(r.PDFURLs))
	for _, u := range r.PDFURLs {
		payload, err := json.Marshal(PDFMessage{RunID: runID, BaseURL: r.BaseURL, URL: u})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(u),
			Value: payload,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d pdf urls: %w", len(msgs), err)
	}
	return nil
}
