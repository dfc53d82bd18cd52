package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sequent.dev/internal/platform/timeouts"
)

// WebhookConfig configures the outbound delivery webhook.
type WebhookConfig struct {
	URL        string
	HTTPClient *http.Client
}

type webhookSender struct {
	cfg WebhookConfig
}

// NewWebhookSender builds a sender that POSTs each message as JSON to a
// configured webhook.
func NewWebhookSender(cfg WebhookConfig) Sender {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: timeouts.Collaborator}
	}
	return &webhookSender{cfg: cfg}
}

func (s *webhookSender) Send(ctx context.Context, recipient, subject, body string) error {
	webhookURL := strings.TrimSpace(s.cfg.URL)
	recipient = strings.TrimSpace(recipient)
	if webhookURL == "" {
		return fmt.Errorf("webhook url is required")
	}
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("body is required")
	}

	requestBody, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"subject":   subject,
		"body":      body,
	})
	if err != nil {
		return fmt.Errorf("marshal delivery request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errorBody, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return fmt.Errorf("read delivery error body: %w", err)
		}
		return fmt.Errorf("delivery request status %d: %s", res.StatusCode, strings.TrimSpace(string(errorBody)))
	}
	return nil
}
