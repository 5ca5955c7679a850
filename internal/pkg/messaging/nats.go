package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS broker.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS is a Broker backed by core NATS. Core NATS has no redelivery, so a
// failed handler only gets logged.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	closed bool
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	err := n.conn.Drain()
	n.conn.Close()
	return err
}

func (n *NATS) Publish(ctx context.Context, topic string, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	msg := nats.NewMsg(topic)
	msg.Data = env.Body
	for k, v := range env.Headers {
		msg.Header.Set(k, v)
	}
	if len(env.Key) > 0 {
		msg.Header.Set("Nats-Msg-Key", string(env.Key))
	}

	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	return n.conn.FlushWithContext(ctx)
}

func (n *NATS) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	so := newSubscribeOptions(opts...)

	msgs := make(chan *nats.Msg, so.workers)
	sub, err := n.conn.ChanQueueSubscribe(topic, so.group, msgs)
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range so.workers {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-msgs:
					d := Delivery{
						Topic:      m.Subject,
						Body:       m.Data,
						Headers:    map[string]string{},
						ReceivedAt: time.Now(),
					}
					for k := range m.Header {
						if k == "Nats-Msg-Key" {
							d.Key = []byte(m.Header.Get(k))
							continue
						}
						d.Headers[k] = m.Header.Get(k)
					}
					if err := handle(ctx, DriverNATS, h, d); err != nil {
						logDropped(ctx, DriverNATS, topic, err)
					}
				}
			}
		})
	}

	<-ctx.Done()
	uerr := sub.Unsubscribe()
	wg.Wait()
	return errors.Join(ctx.Err(), uerr)
}
