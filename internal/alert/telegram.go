// Package alert forwards risk alerts to a Telegram chat.
package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"wallet-risk-lab/internal/observability"
	"wallet-risk-lab/internal/upstream"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 50 * time.Second
	messageHeader  = "🚨 Alert from Novaledger 🚨\n\n"
)

// ErrEmptyMessage is returned when an alert has no text.
var ErrEmptyMessage = errors.New("message is required")

// SendResult reports what happened to an alert.
type SendResult struct {
	Delivered bool // false when credentials are not configured
}

// Sender delivers alerts.
type Sender interface {
	Send(ctx context.Context, message string) (*SendResult, error)
}

// Telegram sends alerts through the Bot API sendMessage method.
type Telegram struct {
	http    *upstream.Client
	token   string
	chatID  string
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

var _ Sender = (*Telegram)(nil)

// TelegramOptions contains configuration for creating a Telegram sender.
type TelegramOptions struct {
	HTTP    *upstream.Client // nil uses DefaultBaseURL with DefaultTimeout
	Token   string
	ChatID  string
	Logger  *zap.SugaredLogger
	Metrics *observability.Metrics
}

// NewTelegram creates a Telegram sender.
func NewTelegram(opts TelegramOptions) *Telegram {
	client := opts.HTTP
	if client == nil {
		client = upstream.New(DefaultBaseURL, upstream.WithTimeout(DefaultTimeout), upstream.WithMaxRetries(0))
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Telegram{
		http:    client,
		token:   opts.Token,
		chatID:  opts.ChatID,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Configured reports whether both bot token and chat ID are set.
func (t *Telegram) Configured() bool {
	return t.token != "" && t.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts message to the configured chat. Without credentials the alert
// is dropped with a warning and Send succeeds with Delivered=false.
func (t *Telegram) Send(ctx context.Context, message string) (*SendResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if !t.Configured() {
		t.logger.Warn("telegram credentials not configured, alert not sent")
		t.metrics.RecordAlert("skipped")
		return &SendResult{}, nil
	}

	req := sendMessageRequest{
		ChatID:    t.chatID,
		Text:      messageHeader + message,
		ParseMode: "Markdown",
	}
	var resp botResponse
	path := "/bot" + t.token + "/sendMessage"
	if err := t.http.PostJSON(ctx, "sendMessage", path, req, &resp); err != nil {
		t.metrics.RecordAlert("error")
		err = translateError(err)
		t.logger.Errorw("telegram alert failed", "error", err)
		return nil, err
	}
	if !resp.OK && resp.Description != "" {
		t.metrics.RecordAlert("error")
		return nil, fmt.Errorf("telegram: %s", resp.Description)
	}

	t.metrics.RecordAlert("sent")
	t.logger.Infow("telegram alert sent", "chat_id", t.chatID)
	return &SendResult{Delivered: true}, nil
}

// translateError surfaces the Bot API description and keeps the bot token
// (part of the request URL) out of the error text.
func translateError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("telegram API request timed out: %w", context.DeadlineExceeded)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("telegram: %w", context.Canceled)
	case errors.As(err, &netErr) && netErr.Timeout():
		return errors.New("telegram API request timed out")
	}

	se, ok := upstream.AsStatusError(err)
	if !ok {
		return errors.New("telegram: request failed")
	}
	var body botResponse
	if jsonErr := json.Unmarshal(se.Body, &body); jsonErr == nil && body.Description != "" {
		return fmt.Errorf("telegram: %s (status %d)", body.Description, se.StatusCode)
	}
	return fmt.Errorf("telegram API error: %d", se.StatusCode)
}
