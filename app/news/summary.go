package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const summaryMaxLen = 280

// Summarizer fills in a missing item summary by extracting readable text
// from the article page. Strictly best effort: any failure leaves the
// summary empty.
type Summarizer struct {
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
}

func NewSummarizer(userAgent string, httpClient *http.Client, timeout time.Duration) *Summarizer {
	return &Summarizer{
		userAgent:  userAgent,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (s *Summarizer) Run(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.fetchPage(fetchCtx, link)
	if err != nil {
		slog.Debug("Summary fetch failed", "link", link, "error", err)
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		slog.Debug("Summary extraction failed", "link", link, "error", err)
		return ""
	}

	return trimSummary(article.TextContent)
}

// trimSummary keeps the first paragraph and caps it at summaryMaxLen bytes,
// backing up to a rune boundary so a multi-byte character is never split.
func trimSummary(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if len(text) > summaryMaxLen {
		cut := summaryMaxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

func (s *Summarizer) fetchPage(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	// Article pages can be large; cap what we read
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
