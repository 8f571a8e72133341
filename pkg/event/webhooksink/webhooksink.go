// Package webhooksink implements event.Sink as an HTTP POST to a
// configured webhook URL, using the teacher's pkg/httpclient for
// retry/backoff — the "HTTP webhook calls" suspension point named in
// §5's scheduling model.
package webhooksink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskforge/taskforge/pkg/event"
	"github.com/taskforge/taskforge/pkg/httpclient"
)

// Sink POSTs each event as JSON to a fixed URL.
type Sink struct {
	url    string
	client *httpclient.Client
}

// New returns a webhook sink posting to url with the teacher's default
// smart-retry strategy.
func New(url string) *Sink {
	return &Sink{
		url:    url,
		client: httpclient.New(httpclient.WithMaxRetries(3)),
	}
}

// Emit is best-effort: delivery failures are returned to the caller,
// which per the Sink contract must not treat them as fatal to the task.
func (s *Sink) Emit(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("webhooksink: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhooksink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhooksink: post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhooksink: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ event.Sink = (*Sink)(nil)
