package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Record is the JSON value published for each exported email
type Record struct {
	SessionID  string    `json:"session_id"`
	Subject    string    `json:"subject,omitempty"`
	Tone       string    `json:"tone,omitempty"`
	Signature  string    `json:"signature,omitempty"`
	Text       string    `json:"text"`
	ExportedAt time.Time `json:"exported_at"`
}

// MessageWriter is the subset of kafka.Writer used by the exporter
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaExporter publishes finalized emails to a Kafka topic
type KafkaExporter struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaExporter creates an exporter writing to cfg.Topic
func NewKafkaExporter(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaExporter, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return NewKafkaExporterWithWriter(writer, cfg.Topic, logger), nil
}

// NewKafkaExporterWithWriter creates an exporter around an existing writer
func NewKafkaExporterWithWriter(writer MessageWriter, topic string, logger *zap.Logger) *KafkaExporter {
	return &KafkaExporter{writer: writer, topic: topic, logger: logger}
}

// Name implements core.Exporter
func (e *KafkaExporter) Name() string {
	return "kafka " + e.topic
}

// Export implements core.Exporter
func (e *KafkaExporter) Export(ctx context.Context, email *core.OutgoingEmail) error {
	msg, err := buildMessage(email, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish email: %w", err)
	}

	e.logger.Info("Finalized email published",
		zap.String("topic", e.topic),
		zap.String("session_id", email.SessionID))
	return nil
}

// Close closes the underlying writer
func (e *KafkaExporter) Close() error {
	return e.writer.Close()
}

func buildMessage(email *core.OutgoingEmail, now time.Time) (kafka.Message, error) {
	value, err := json.Marshal(Record{
		SessionID:  email.SessionID,
		Subject:    email.Subject,
		Tone:       string(email.Tone),
		Signature:  email.SignatureName,
		Text:       email.Text,
		ExportedAt: now,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode email record: %w", err)
	}

	return kafka.Message{
		Key:   []byte(email.SessionID),
		Value: value,
	}, nil
}
