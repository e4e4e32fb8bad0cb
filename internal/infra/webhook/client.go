package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// ResultPayload is the JSON summary posted for one exam result. No
// per-question data leaves the system.
type ResultPayload struct {
	ExamID      int64     `json:"exam_id"`
	ExamName    string    `json:"exam_name"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Client posts exam result summaries to the configured automation endpoint.
// A 2xx status is the only success condition; there is no retry here, the
// caller leaves the sent flag unset for the next push run.
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) PostResult(ctx context.Context, payload ResultPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error posting webhook payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
