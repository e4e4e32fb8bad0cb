package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recruitment_notification_bot/internal/domain/messaging"
)

// responseLimit bounds the raw provider response kept for the audit trail.
const responseLimit = 255

const defaultTimeout = 15 * time.Second

// GatewayClient sends SMS messages through the HTTP gateway. One POST per
// recipient, no retries: a failed attempt is terminal for that occurrence.
type GatewayClient struct {
	endpoint string
	token    string
	sender   string
	client   *http.Client
}

func NewGatewayClient(endpoint, token, sender string) *GatewayClient {
	return &GatewayClient{
		endpoint: endpoint,
		token:    token,
		sender:   sender,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// gatewayResponse is the part of the provider's JSON reply the client acts on.
type gatewayResponse struct {
	Success bool `json:"success"`
}

// SendSMS normalizes the phone number and posts the message to the gateway.
// An empty normalization result is a no-op failure: no HTTP call is made and
// the result carries a synthetic response for the audit row. Sent means HTTP
// 2xx AND a truthy success field, both together.
func (g *GatewayClient) SendSMS(ctx context.Context, phone, text string) (messaging.SMSResult, error) {
	normalized := messaging.NormalizePhone(phone)
	if normalized == "" {
		return messaging.SMSResult{Success: false, Response: "invalid phone number"}, nil
	}

	form := url.Values{}
	form.Add("phone[]", normalized)
	form.Set("text", text)
	form.Set("sender", g.sender)
	form.Set("details", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return messaging.SMSResult{}, fmt.Errorf("error building sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return messaging.SMSResult{Success: false, Response: truncate(err.Error())}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return messaging.SMSResult{Success: false, Response: truncate("read error: " + err.Error())}, nil
	}

	result := messaging.SMSResult{Response: truncate(string(body))}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, nil
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return result, nil
	}
	result.Success = parsed.Success
	return result, nil
}

func truncate(s string) string {
	if len(s) > responseLimit {
		return s[:responseLimit]
	}
	return s
}
