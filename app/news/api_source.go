package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/language"
)

var _ Source = (*APISource)(nil)

// APISource pulls news from a JSON news API that hands out short-lived
// access tokens. The token is fetched lazily and cached until shortly
// before expiry.
type APISource struct {
	apiBase    string
	apiKey     string
	locale     string
	userAgent  string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewAPISource(apiBase, apiKey, locale, userAgent string, httpClient *http.Client) *APISource {
	// Normalize the configured locale; a bad tag falls back to English
	// rather than failing startup.
	tag, err := language.Parse(locale)
	if err != nil {
		slog.Warn("Invalid news locale, falling back to en", "locale", locale, "error", err)
		tag = language.English
	}

	return &APISource{
		apiBase:    apiBase,
		apiKey:     apiKey,
		locale:     tag.String(),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type apiNewsItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	PublishedAt int64    `json:"published_at"` // unix seconds, 0 when unknown
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
}

// Fetch returns up to limit items for the category, newest first, paging
// through the API as needed.
func (s *APISource) Fetch(ctx context.Context, category string, limit int) ([]Item, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain news API token: %w", err)
	}

	var items []Item
	page := 1
	for len(items) < limit {
		batch, hasMore, err := s.fetchPage(ctx, token, category, page, limit-len(items))
		if err != nil {
			return nil, err
		}

		for _, raw := range batch {
			item := Item{
				ID:       raw.ID,
				Headline: raw.Title,
				Summary:  raw.Summary,
				Tags:     raw.Tags,
				Link:     raw.URL,
			}
			if raw.PublishedAt > 0 {
				t := time.Unix(raw.PublishedAt, 0).UTC()
				item.PublishedAt = &t
			}
			items = append(items, item)
		}

		if !hasMore || len(batch) == 0 {
			break
		}
		page++
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *APISource) fetchPage(ctx context.Context, token, category string, page, limit int) ([]apiNewsItem, bool, error) {
	params := url.Values{}
	params.Set("locale", s.locale)
	params.Set("category", category)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/v1/news?%s", s.apiBase, params.Encode()), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch news page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("news API error: HTTP %d", resp.StatusCode)
	}

	var body struct {
		Items   []apiNewsItem `json:"items"`
		HasMore bool          `json:"has_more"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("failed to parse news response: %w", err)
	}

	return body.Items, body.HasMore, nil
}

func (s *APISource) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		return s.token, nil
	}

	params := url.Values{}
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST",
		s.apiBase+"/api/v1/token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint error: HTTP %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"` // seconds
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	s.token = body.AccessToken
	expiresIn := time.Duration(body.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = 10 * time.Minute
	}
	// Refresh a little early so an in-flight request does not race expiry
	s.tokenExpiry = time.Now().Add(expiresIn - 30*time.Second)

	return s.token, nil
}
