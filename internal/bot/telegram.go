// Package bot adapts Telegram chat traffic onto the ledger core and
// renders core results as user-facing text. All display strings live
// here; the core only ever returns structured records and summaries.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Update is the subset of a Telegram update the bot cares about.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Sender delivers outbound messages to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

const defaultAPIBase = "https://api.telegram.org"

// TelegramSender sends messages through the Bot API over plain HTTP.
type TelegramSender struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// NewTelegramSender creates a sender for the given bot token.
func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		token:      token,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewTelegramSenderWithBase creates a sender against a custom API base,
// used in tests.
func NewTelegramSenderWithBase(token, apiBase string) *TelegramSender {
	s := NewTelegramSender(token)
	s.apiBase = apiBase
	return s
}

// SendMessage implements Sender.
func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("SendMessage: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("SendMessage: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("SendMessage: telegram returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

var _ Sender = (*TelegramSender)(nil)
