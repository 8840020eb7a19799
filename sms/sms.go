// Package sms delivers one-time login codes to customer phones.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// HTTPSender posts messages to a JSON SMS gateway.
type HTTPSender struct {
	url      string
	apiKey   string
	senderID string
	client   *http.Client
}

func NewHTTPSender(url, apiKey, senderID string) *HTTPSender {
	return &HTTPSender{
		url:      url,
		apiKey:   apiKey,
		senderID: senderID,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func (s *HTTPSender) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendRequest{To: phone, From: s.senderID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// gateway is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, phone, message string) error {
	s.log.Info("sms not sent, no gateway configured", "phone", phone, "message", message)
	return nil
}
