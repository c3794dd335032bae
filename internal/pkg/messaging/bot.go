// internal/pkg/messaging/bot.go
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BotClient talks to the WhatsApp bot service over HTTP.
type BotClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBotClient(baseURL string, timeout time.Duration) *BotClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BotClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type botResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Connected bool   `json:"connected,omitempty"`
}

// Send delivers text to a phone number. The number is converted to a
// WhatsApp chat id first.
func (b *BotClient) Send(ctx context.Context, phone, text string) error {
	to, err := ChatID(phone)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{To: to, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bot send failed: %w", err)
	}
	defer resp.Body.Close()

	var out botResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("bot send rejected (status %d): %s", resp.StatusCode, msg)
	}

	return nil
}

// Health reports whether the bot is reachable and paired with a phone.
func (b *BotClient) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return false, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("bot health failed: %w", err)
	}
	defer resp.Body.Close()

	var out botResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode bot health: %w", err)
	}

	return out.OK && out.Connected, nil
}

// ChatID turns a local or international phone number into a WhatsApp chat id.
// Local Malaysian numbers starting with 0 get the 60 country code.
func ChatID(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	n := digits.String()
	if strings.HasPrefix(n, "0") {
		n = "6" + n
	}
	if len(n) < 8 {
		return "", fmt.Errorf("phone number %q is too short", phone)
	}

	return n + "@s.whatsapp.net", nil
}
