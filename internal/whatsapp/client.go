// internal/whatsapp/client.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// Client sends messages through the WhatsApp Business (Graph) API.
type Client struct {
	client        *http.Client
	baseURL       string
	accessToken   string
	phoneNumberID string
}

func NewClient(accessToken, phoneNumberID string) *Client {
	return &Client{
		client:        &http.Client{Timeout: 10 * time.Second},
		baseURL:       defaultGraphBaseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// SendText delivers a text message to the given recipient number.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	payload, _ := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": text},
	})
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("whatsapp send status %d: %s", resp.StatusCode, body)
	}
	return nil
}
