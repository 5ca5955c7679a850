package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: broker closed")
)

// Broker is a broker-agnostic publish/subscribe client.
type Broker interface {
	io.Closer

	// Publish sends env to topic.
	Publish(ctx context.Context, topic string, env Envelope) error

	// Subscribe delivers messages of topic to h until ctx is done or the
	// broker is closed. It blocks.
	Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error
}

// Handler processes one delivery.
type Handler func(ctx context.Context, d Delivery) error

// Envelope is an outgoing message.
type Envelope struct {
	Key     []byte
	Body    []byte
	Headers map[string]string
}

// Delivery is a received message.
type Delivery struct {
	Topic   string
	Key     []byte
	Body    []byte
	Headers map[string]string

	// Attempt starts at 1; zero means the broker does not track it.
	Attempt    int
	ReceivedAt time.Time
}

// Header returns the header value for key.
func (d Delivery) Header(key string) string {
	return d.Headers[key]
}
