package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
	DriverMemory       = "memory"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the settings of every driver; only the selected
// driver's block is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

var drivers = map[string]func(context.Context, FactoryOptions) (Broker, error){
	DriverNSQ:          func(_ context.Context, o FactoryOptions) (Broker, error) { return broker(NewNSQ(o.NSQ)) },
	DriverKafka:        func(_ context.Context, o FactoryOptions) (Broker, error) { return broker(NewKafka(o.Kafka)) },
	DriverNATS:         func(_ context.Context, o FactoryOptions) (Broker, error) { return broker(NewNATS(o.NATS)) },
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Broker, error) { return broker(NewPubSub(ctx, o.PubSub)) },
	DriverMemory:       func(context.Context, FactoryOptions) (Broker, error) { return NewMemory(), nil },
}

// broker keeps a failed constructor from yielding a non-nil Broker holding a
// nil pointer.
func broker[B Broker](b B, err error) (Broker, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewFromDriver builds the Broker registered under driver.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Broker, error) {
	build, ok := drivers[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return build(ctx, opts)
}
