package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// webhookPayload is the JSON body posted for each alert.
type webhookPayload struct {
	Alert      Alert    `json:"alert"`
	Recipients []string `json:"recipients,omitempty"`
	Source     string   `json:"source"`
}

// WebhookNotifier POSTs alerts as JSON to a configured URL.
type WebhookNotifier struct {
	client *http.Client
	url    string
}

// NewWebhookNotifier builds a notifier for url with a per-request timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// Notify posts the alert. Any 2xx response counts as delivered.
func (w *WebhookNotifier) Notify(ctx context.Context, a Alert, recipients []string) error {
	jsonData, err := json.Marshal(webhookPayload{
		Alert:      a,
		Recipients: recipients,
		Source:     "quegate",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := w.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code: %d", httpResp.StatusCode)
	}

	return nil
}
