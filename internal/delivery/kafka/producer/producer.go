package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-museum/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
)

type Producer interface {
	PublishBookingConfirmed(ctx context.Context, event kafka.BookingConfirmedEvent) error
	PublishPaymentFailed(ctx context.Context, event kafka.PaymentFailedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
	now  func() time.Time
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
		now:  time.Now,
	}
}

func (p *implProducer) PublishBookingConfirmed(ctx context.Context, event kafka.BookingConfirmedEvent) error {
	event.Timestamp = p.now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishBookingConfirmed: %v", err)
		return err
	}

	// Partition by booking id.
	return p.send(ctx, kafka.TopicBookingConfirmed, event.BookingID, val)
}

func (p *implProducer) PublishPaymentFailed(ctx context.Context, event kafka.PaymentFailedEvent) error {
	event.Timestamp = p.now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishPaymentFailed: %v", err)
		return err
	}

	return p.send(ctx, kafka.TopicPaymentFailed, event.SessionID, val)
}

func (p *implProducer) send(ctx context.Context, topic, key string, val []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(p.now().Format(time.RFC3339)),
			},
		},
	}

	partition, offset, err := p.prod.SendMessage(msg)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.send: topic=%s: %v", topic, err)
		return err
	}

	p.l.Debugf(ctx, "Published %s key=%s partition=%d offset=%d", topic, key, partition, offset)

	return nil
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}

type nopProducer struct{}

// NewNopProducer drops every event. Used when Kafka is disabled.
func NewNopProducer() Producer {
	return nopProducer{}
}

func (nopProducer) PublishBookingConfirmed(context.Context, kafka.BookingConfirmedEvent) error {
	return nil
}

func (nopProducer) PublishPaymentFailed(context.Context, kafka.PaymentFailedEvent) error {
	return nil
}

func (nopProducer) Close() error {
	return nil
}
