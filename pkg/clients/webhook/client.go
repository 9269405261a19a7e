package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client pushes operator notifications to an incoming-webhook endpoint.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the payload posted to the webhook. The "text" field is what
// Slack and Mattermost compatible endpoints render.
type Message struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client posting to url.
func NewClient(url string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{httpClient: restyClient, url: url}
}

// Send posts msg and fails on any non-2xx response.
func (c *APIClient) Send(ctx context.Context, msg Message) error {
	if msg.Text == "" {
		return errors.New("webhook message text must not be empty")
	}

	body := msg
	if msg.Title != "" {
		body.Text = fmt.Sprintf("*%s*\n%s", msg.Title, msg.Text)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook rejected message: status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
