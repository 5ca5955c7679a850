package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookConfig configures a gateway that accepts a JSON POST per message.
type WebhookConfig struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

type webhookPayload struct {
	To        string `json:"to"`
	Body      string `json:"body"`
	Reference string `json:"reference,omitempty"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// Webhook posts messages to an HTTP SMS gateway.
type Webhook struct {
	cfg  WebhookConfig
	http *http.Client
}

// NewWebhook returns a Webhook sender.
func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, errors.New("sms: webhook url is required")
	}

	return &Webhook{
		cfg:  cfg,
		http: &http.Client{Timeout: defaultTimeout(cfg.Timeout)},
	}, nil
}

func (*Webhook) Name() string { return "webhook" }

// Send posts msg. 4xx responses are permanent failures; 5xx may be retried.
func (w *Webhook) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(webhookPayload{To: msg.To, Body: msg.Body, Reference: msg.Reference})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "storefront-sms")
	if w.cfg.Username != "" {
		req.SetBasicAuth(w.cfg.Username, w.cfg.Password)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("sms: webhook responded %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: webhook responded %d", ErrPermanent, resp.StatusCode)
	}

	// the message id is optional; gateways that reply with no body are fine
	var out webhookResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)

	return out.ID, nil
}
