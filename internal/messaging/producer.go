package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderEventType   = "event-type"
	HeaderContentType = "content-type"
)

var producerTracer = otel.Tracer("messaging/producer")

// Typed events carry their type in the event-type header so consumers can
// route without decoding the payload.
type Typed interface {
	EventType() string
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireAll,
		},
	}
}

// Publish writes event as JSON. Messages with the same key land on the same
// partition, so events for one order stay in order.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	msg, err := encode(key, event)
	if err != nil {
		return err
	}

	eventType := headerValue(msg, HeaderEventType)
	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(key),
			attribute.String("messaging.event_type", eventType),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewHeaderCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func encode(key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	carrier := NewHeaderCarrier(&msg)
	carrier.Set(HeaderContentType, "application/json")
	if typed, ok := event.(Typed); ok {
		carrier.Set(HeaderEventType, typed.EventType())
	}

	return msg, nil
}

func headerValue(msg kafka.Message, key string) string {
	return NewHeaderCarrier(&msg).Get(key)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
