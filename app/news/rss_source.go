package news

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"
)

var _ Source = (*RSSSource)(nil)

// RSSSource serves a category from an RSS/Atom feed. Feeds list entries
// newest first, matching the Source contract.
type RSSSource struct {
	feedURL    string
	userAgent  string
	httpClient *http.Client
	parser     *gofeed.Parser
}

func NewRSSSource(feedURL, userAgent string, httpClient *http.Client) *RSSSource {
	return &RSSSource{
		feedURL:    feedURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
	}
}

func (s *RSSSource) Fetch(ctx context.Context, category string, limit int) ([]Item, error) {
	data, err := s.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}

		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		if id == "" {
			continue
		}

		item := Item{
			ID:       id,
			Headline: entry.Title,
			Summary:  entry.Description,
			Tags:     append([]string{category}, entry.Categories...),
			Link:     entry.Link,
		}
		if entry.PublishedParsed != nil {
			t := entry.PublishedParsed.UTC()
			item.PublishedAt = &t
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
