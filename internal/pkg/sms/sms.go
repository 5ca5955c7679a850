// Package sms delivers text messages through a configured provider.
package sms

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPermanent marks a failure that will not succeed on retry, such as a
	// rejected number or an opted-out recipient.
	ErrPermanent = errors.New("sms: permanent delivery failure")

	ErrUnknownDriver = errors.New("sms: unknown driver")
)

// Message is a single outbound SMS.
type Message struct {
	// To is the E.164 recipient.
	To string
	// Body is the text content.
	Body string
	// Reference is an idempotency reference passed to providers that accept one.
	Reference string
}

// Sender sends a message and returns the provider's message id.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	// Driver is one of pinpoint, webhook or log.
	Driver string

	Pinpoint PinpointConfig
	Webhook  WebhookConfig
}

// New builds the Sender named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Sender, error) {
	switch cfg.Driver {
	case "pinpoint":
		return NewPinpoint(ctx, cfg.Pinpoint)
	case "webhook":
		return NewWebhook(cfg.Webhook)
	case "log", "":
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func defaultTimeout(d time.Duration) time.Duration {
	if d < time.Second {
		return 3 * time.Second
	}
	return d
}
