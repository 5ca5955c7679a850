package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
)

var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

// KafkaConfig configures the Kafka broker.
type KafkaConfig struct {
	Brokers []string
	Dialer  *kafka.Dialer
}

// Kafka is a Broker backed by kafka-go. Offsets are committed only after a
// successful handler; a failed message is redelivered after a rebalance or
// restart.
type Kafka struct {
	cfg KafkaConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers map[*kafka.Reader]struct{}
	closed  bool
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	return &Kafka{
		cfg:     cfg,
		writers: map[string]*kafka.Writer{},
		readers: map[*kafka.Reader]struct{}{},
	}, nil
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers, readers := k.writers, k.readers
	k.writers, k.readers = nil, nil
	k.mu.Unlock()

	var err error
	for r := range readers {
		err = errors.Join(err, r.Close())
	}
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(k.cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	if k.cfg.Dialer != nil {
		w.Transport = &kafka.Transport{TLS: k.cfg.Dialer.TLS, SASL: k.cfg.Dialer.SASLMechanism}
	}
	k.writers[topic] = w
	return w, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	w, err := k.writer(topic)
	if err != nil {
		return err
	}

	msg := kafka.Message{Key: env.Key, Value: env.Body}
	for key, v := range env.Headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(v)})
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	so := newSubscribeOptions(opts...)
	if so.group == "" {
		return ErrGroupRequired
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  so.group,
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   k.cfg.Dialer,
	})

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return errors.Join(ErrClosed, r.Close())
	}
	k.readers[r] = struct{}{}
	k.mu.Unlock()

	defer func() {
		k.mu.Lock()
		_, owned := k.readers[r]
		delete(k.readers, r)
		k.mu.Unlock()
		if owned {
			_ = r.Close()
		}
	}()

	msgs := make(chan kafka.Message)
	var wg sync.WaitGroup
	for range so.workers {
		wg.Go(func() {
			for m := range msgs {
				d := Delivery{Topic: m.Topic, Key: m.Key, Body: m.Value, Headers: map[string]string{}, ReceivedAt: m.Time}
				for _, hd := range m.Headers {
					d.Headers[hd.Key] = string(hd.Value)
				}
				if err := handle(ctx, DriverKafka, h, d); err != nil {
					logDropped(ctx, DriverKafka, topic, err)
					continue
				}
				if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					logDropped(ctx, DriverKafka, topic, err)
				}
			}
		})
	}

	var fetchErr error
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			fetchErr = err
			break
		}
		msgs <- m
	}
	close(msgs)
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("messaging: kafka fetch: %w", fetchErr)
}
