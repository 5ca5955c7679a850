package messaging

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

const memoryMaxAttempts = 3

var errMemoryQueueFull = errors.New("messaging: memory queue full")

// Memory is an in-process Broker for local runs and tests. Each group gets
// every message once; a failing handler is retried up to memoryMaxAttempts.
type Memory struct {
	mu     sync.Mutex
	groups map[string]map[string]chan Delivery // topic -> group -> queue
	closed bool
	done   chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		groups: map[string]map[string]chan Delivery{},
		done:   make(chan struct{}),
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory) queue(topic, group string) (chan Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.groups[topic] == nil {
		m.groups[topic] = map[string]chan Delivery{}
	}
	q, ok := m.groups[topic][group]
	if !ok {
		q = make(chan Delivery, 256)
		m.groups[topic][group] = q
	}
	return q, nil
}

// Publish copies env into the queue of every group subscribed to topic.
// Messages published before any subscription are dropped.
func (m *Memory) Publish(ctx context.Context, topic string, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	queues := slices.Collect(maps.Values(m.groups[topic]))
	m.mu.Unlock()

	for _, q := range queues {
		d := Delivery{
			Topic:      topic,
			Key:        slices.Clone(env.Key),
			Body:       slices.Clone(env.Body),
			Headers:    maps.Clone(env.Headers),
			Attempt:    1,
			ReceivedAt: time.Now(),
		}
		select {
		case q <- d:
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return ErrClosed
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	so := newSubscribeOptions(opts...)

	q, err := m.queue(topic, so.group)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range so.workers {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case d := <-q:
					m.deliver(ctx, h, d, q)
				}
			}
		})
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (m *Memory) deliver(ctx context.Context, h Handler, d Delivery, q chan Delivery) {
	err := handle(ctx, DriverMemory, h, d)
	if err == nil {
		return
	}
	if d.Attempt >= memoryMaxAttempts {
		logDropped(ctx, DriverMemory, d.Topic, err)
		return
	}

	d.Attempt++
	select {
	case q <- d:
	default:
		logDropped(ctx, DriverMemory, d.Topic, errors.Join(errMemoryQueueFull, err))
	}
}
