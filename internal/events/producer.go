package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events to Kafka from a single background
// goroutine. Publish never waits on the broker; when the inbox is full the
// event is dropped and logged.
type Producer struct {
	w        messageWriter
	service  string
	inbox    chan kafka.Message
	stop     chan struct{}
	closeCh  chan struct{}
	stopOnce sync.Once
	logger   zerolog.Logger
}

func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(w, service, buf)
}

func newProducer(w messageWriter, service string, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	return &Producer{
		w:       w,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		stop:    make(chan struct{}),
		closeCh: make(chan struct{}),
		logger:  log.With().Str("component", "events").Logger(),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.stop:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.logger.Error().Err(err).Msg("kafka writer close failed")
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("event publish failed")
	}
}

// Publish enqueues event for delivery.
func (p *Producer) Publish(_ context.Context, event models.OrderEvent) {
	env, err := NewEnvelope(p.service, event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("event encode failed")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("event encode failed")
		return
	}
	msg := kafka.Message{
		Key:   PartitionKey(event),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	select {
	case <-p.stop:
		p.logger.Warn().Str("type", event.Type).Msg("producer closed, event dropped")
		return
	default:
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("type", event.Type).Str("orderId", event.OrderID).Msg("event inbox full, event dropped")
	}
}

// Close stops the loop after it flushed pending messages.
func (p *Producer) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Producer) WaitClosed() { <-p.closeCh }
