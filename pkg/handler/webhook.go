package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultWebhookTimeout bounds a webhook request.
const DefaultWebhookTimeout = 5 * time.Second

// HTTPDoer is implemented by *http.Client, including the clients returned
// by oauth2 token sources.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookConfig describes the webhook request.
type WebhookConfig struct {
	Headers     map[string]string `mapstructure:"headers"`
	URL         string            `mapstructure:"url"`
	Method      string            `mapstructure:"method"`
	ContentType string            `mapstructure:"content_type"`
	Timeout     time.Duration     `mapstructure:"timeout"`
}

// Webhook sends each formatted record as the body of an HTTP request.
type Webhook struct {
	logger.Processing
	client  HTTPDoer
	payload func(rec logger.Record, formatted []byte) ([]byte, error)
	cfg     WebhookConfig
}

// NewWebhook creates a Webhook handler. A nil client uses http.DefaultClient.
func NewWebhook(client HTTPDoer, cfg WebhookConfig, level slog.Level, bubble bool) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Method == "" {
		cfg.Method = http.MethodPost
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWebhookTimeout
	}
	return &Webhook{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter {
			return formatter.NewJSON(formatter.WithAppendNewline(false))
		}),
		client: client,
		cfg:    cfg,
		payload: func(_ logger.Record, formatted []byte) ([]byte, error) {
			return formatted, nil
		},
	}
}

func (h *Webhook) Config() WebhookConfig { return h.cfg }

func (h *Webhook) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, rec logger.Record, formatted []byte) error {
		body, err := h.payload(rec, formatted)
		if err != nil {
			return err
		}
		return h.send(ctx, body)
	})
}

func (h *Webhook) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

func (h *Webhook) Close() error { return nil }

func (h *Webhook) send(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(h.cfg.Method), h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", h.cfg.ContentType)
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// SlackConfig holds the optional Slack message fields.
type SlackConfig struct {
	Channel   string `mapstructure:"channel"`
	Username  string `mapstructure:"username"`
	IconEmoji string `mapstructure:"icon_emoji"`
}

// SlackWebhook posts records to a Slack incoming webhook.
type SlackWebhook struct {
	*Webhook
	slack SlackConfig
}

// NewSlackWebhook creates a SlackWebhook handler. Records are rendered with
// a Line formatter into the message text.
func NewSlackWebhook(client HTTPDoer, url string, slack SlackConfig, level slog.Level, bubble bool) *SlackWebhook {
	wh := NewWebhook(client, WebhookConfig{URL: url}, level, bubble)
	wh.SetFormatter(formatter.NewLine(formatter.WithFormat("%channel%.%level_name%: %message% %context% %extra%"), formatter.WithIgnoreEmpty(true)))
	h := &SlackWebhook{Webhook: wh, slack: slack}
	wh.payload = h.message
	return h
}

func (h *SlackWebhook) Slack() SlackConfig { return h.slack }

type slackMessage struct {
	Text      string `json:"text"`
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

func (h *SlackWebhook) message(_ logger.Record, formatted []byte) ([]byte, error) {
	return json.Marshal(slackMessage{
		Text:      strings.TrimSpace(string(formatted)),
		Channel:   h.slack.Channel,
		Username:  h.slack.Username,
		IconEmoji: h.slack.IconEmoji,
	})
}
