package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/akobets/signal-comb/app/relay"
)

const DefaultLineAPIBase = "https://api.line.me"

var _ relay.Notifier = (*Line)(nil)

// Line pushes messages to a LINE user or group through the Messaging API.
// The API only accepts hosted image URLs, so image bytes are not forwarded;
// the text goes out either way.
type Line struct {
	apiBase    string
	token      string
	userAgent  string
	httpClient *http.Client
}

func NewLine(apiBase, token, userAgent string, httpClient *http.Client) *Line {
	if apiBase == "" {
		apiBase = DefaultLineAPIBase
	}
	return &Line{
		apiBase:    apiBase,
		token:      token,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

func (l *Line) Kind() string {
	return "line"
}

// Configured reports whether the adapter has the credentials it needs.
func (l *Line) Configured() bool {
	return l.token != ""
}

func (l *Line) Send(ctx context.Context, recipient string, msg relay.Message) (string, error) {
	if !l.Configured() {
		return "", fmt.Errorf("line token is not configured")
	}

	type textMessage struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	body, err := json.Marshal(struct {
		To       string        `json:"to"`
		Messages []textMessage `json:"messages"`
	}{
		To:       recipient,
		Messages: []textMessage{{Type: "text", Text: msg.Text}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.apiBase+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	retryKey := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("X-Line-Retry-Key", retryKey)
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to push line message: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("line API error (HTTP %d): %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("line API error: HTTP %d", resp.StatusCode)
	}

	var pushResp struct {
		SentMessages []struct {
			ID string `json:"id"`
		} `json:"sentMessages"`
	}
	if err := json.Unmarshal(data, &pushResp); err == nil && len(pushResp.SentMessages) > 0 {
		return pushResp.SentMessages[0].ID, nil
	}

	return retryKey, nil
}
