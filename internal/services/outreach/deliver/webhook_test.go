package deliver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestWebhookSenderPostsMessage(t *testing.T) {
	t.Parallel()

	sender := NewWebhookSender(WebhookConfig{
		URL: "https://hooks.example.com/deliver",
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				if req.Method != http.MethodPost {
					t.Fatalf("method = %s, want POST", req.Method)
				}
				if req.URL.String() != "https://hooks.example.com/deliver" {
					t.Fatalf("url = %s", req.URL)
				}
				if req.Header.Get("Content-Type") != "application/json" {
					t.Fatalf("content type = %q", req.Header.Get("Content-Type"))
				}
				body, err := io.ReadAll(req.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				want := `{"body":"We would love to have you.","recipient":"chen@atlas.example","subject":"Join us"}`
				if string(body) != want {
					t.Fatalf("request body = %s, want %s", string(body), want)
				}
				return response(http.StatusAccepted, ""), nil
			}),
		},
	})

	if err := sender.Send(context.Background(), "chen@atlas.example", "Join us", "We would love to have you."); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestWebhookSenderValidation(t *testing.T) {
	t.Parallel()

	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			t.Fatalf("round trip should not execute for validation failure: %v", req.URL)
			return nil, nil
		}),
	}

	tests := []struct {
		name      string
		url       string
		recipient string
		subject   string
		body      string
	}{
		{name: "missing url", recipient: "a@b.example", subject: "s", body: "b"},
		{name: "missing recipient", url: "https://hooks.example.com", subject: "s", body: "b"},
		{name: "missing subject", url: "https://hooks.example.com", recipient: "a@b.example", body: "b"},
		{name: "missing body", url: "https://hooks.example.com", recipient: "a@b.example", subject: "s"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := NewWebhookSender(WebhookConfig{URL: tt.url, HTTPClient: client})
			if err := sender.Send(context.Background(), tt.recipient, tt.subject, tt.body); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWebhookSenderErrors(t *testing.T) {
	t.Parallel()

	failing := NewWebhookSender(WebhookConfig{
		URL: "https://hooks.example.com/deliver",
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("dial timeout")
			}),
		},
	})
	if err := failing.Send(context.Background(), "a@b.example", "s", "b"); err == nil || !strings.Contains(err.Error(), "delivery request failed") {
		t.Fatalf("error = %v, want delivery request failed", err)
	}

	rejected := NewWebhookSender(WebhookConfig{
		URL: "https://hooks.example.com/deliver",
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return response(http.StatusBadGateway, "upstream unavailable"), nil
			}),
		},
	})
	err := rejected.Send(context.Background(), "a@b.example", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("error = %v, want status 502", err)
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("error = %v, want upstream body included", err)
	}
}

func TestLogSenderRecordsDelivery(t *testing.T) {
	t.Parallel()

	var logged []string
	sender := NewLogSender(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	if err := sender.Send(context.Background(), "chen@atlas.example", "Join us", "body text"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(logged) != 1 {
		t.Fatalf("logged lines = %d, want 1", len(logged))
	}
	if !strings.Contains(logged[0], "chen@atlas.example") || !strings.Contains(logged[0], "Join us") {
		t.Fatalf("log line = %q", logged[0])
	}

	if err := sender.Send(context.Background(), "  ", "s", "b"); err == nil {
		t.Fatal("expected missing recipient error")
	}
}
