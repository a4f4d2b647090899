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

const defaultLang = "ar"

// Message is the body accepted by the messaging gateway
type Message struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Lang      string `json:"lang"`
	SenderID  string `json:"sender_id,omitempty"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client sends WhatsApp messages through an HTTP gateway
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	senderID   string
	lang       string
}

// NewClient creates a gateway client. An empty lang falls back to Arabic.
func NewClient(apiURL, token, senderID, lang string) *Client {
	if lang == "" {
		lang = defaultLang
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL:   apiURL,
		token:    token,
		senderID: senderID,
		lang:     lang,
	}
}

// Send delivers text to recipient. Non-2xx responses and responses with
// success=false are errors carrying the gateway's message.
func (c *Client) Send(ctx context.Context, recipient, text string) error {
	payload, err := json.Marshal(Message{
		Recipient: recipient,
		Message:   text,
		Type:      "whatsapp",
		Lang:      c.lang,
		SenderID:  c.senderID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Message
		if decodeErr != nil || msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("whatsapp API error (status %d): %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !result.Success {
		return fmt.Errorf("whatsapp API rejected message: %s", result.Message)
	}
	return nil
}
