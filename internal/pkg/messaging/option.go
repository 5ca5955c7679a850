package messaging

type subscribeOptions struct {
	group   string
	workers int
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeOptions)

func newSubscribeOptions(opts ...SubscribeOption) subscribeOptions {
	so := subscribeOptions{workers: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	if so.workers <= 0 {
		so.workers = 1
	}
	return so
}

// WithGroup names the consumer group. Members of one group share the
// stream; each group receives every message. It maps to the NSQ channel,
// the NATS queue group, the Kafka group id and the Pub/Sub subscription.
func WithGroup(group string) SubscribeOption {
	return func(o *subscribeOptions) { o.group = group }
}

// WithWorkers sets how many handlers run in parallel.
func WithWorkers(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.workers = n }
}
