package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/akobets/signal-comb/app/relay"
)

const DefaultTelegramAPIBase = "https://api.telegram.org"

var _ relay.Notifier = (*Telegram)(nil)

// Telegram sends messages through the Telegram Bot API. Messages with an
// image go out as sendPhoto with the text as caption; plain messages as
// sendMessage.
type Telegram struct {
	apiBase    string
	token      string
	userAgent  string
	httpClient *http.Client
}

func NewTelegram(apiBase, token, userAgent string, httpClient *http.Client) *Telegram {
	if apiBase == "" {
		apiBase = DefaultTelegramAPIBase
	}
	return &Telegram{
		apiBase:    apiBase,
		token:      token,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

func (t *Telegram) Kind() string {
	return "telegram"
}

// Configured reports whether the adapter has the credentials it needs.
// This is a configuration check, not a connectivity probe.
func (t *Telegram) Configured() bool {
	return t.token != ""
}

func (t *Telegram) Send(ctx context.Context, recipient string, msg relay.Message) (string, error) {
	if !t.Configured() {
		return "", fmt.Errorf("telegram token is not configured")
	}

	if msg.HasImage() {
		return t.sendPhoto(ctx, recipient, msg)
	}
	return t.sendMessage(ctx, recipient, msg.Text)
}

func (t *Telegram) sendMessage(ctx context.Context, chatID, text string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	return t.do(req)
}

func (t *Telegram) sendPhoto(ctx context.Context, chatID string, msg relay.Message) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("chat_id", chatID); err != nil {
		return "", fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if err := writer.WriteField("caption", msg.Text); err != nil {
		return "", fmt.Errorf("failed to write caption field: %w", err)
	}

	name := msg.ImageName
	if name == "" {
		name = "chart.png"
	}
	part, err := writer.CreateFormFile("photo", name)
	if err != nil {
		return "", fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := part.Write(msg.Image); err != nil {
		return "", fmt.Errorf("failed to write photo data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/bot%s/sendPhoto", t.apiBase, t.token), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", t.userAgent)

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) (string, error) {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
		Result      struct {
			MessageID int64 `json:"message_id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse telegram response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		return "", fmt.Errorf("telegram API error (HTTP %d): %s", resp.StatusCode, apiResp.Description)
	}

	return strconv.FormatInt(apiResp.Result.MessageID, 10), nil
}
