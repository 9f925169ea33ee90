package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Market News</title>
  <item>
    <guid>guid-1</guid>
    <title>Dollar rallies</title>
    <description>The dollar gained against most majors.</description>
    <link>https://example.com/dollar</link>
    <pubDate>Fri, 15 Mar 2024 09:00:00 GMT</pubDate>
    <category>forex</category>
  </item>
  <item>
    <title>Undated note</title>
    <link>https://example.com/undated</link>
  </item>
</channel>
</rss>`

func TestRSSSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	source := NewRSSSource(server.URL, "Test Agent", server.Client())

	items, err := source.Fetch(context.Background(), "CURRENCY", 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "guid-1" {
		t.Errorf("Expected GUID as item ID, got '%s'", first.ID)
	}
	if first.Headline != "Dollar rallies" {
		t.Errorf("Unexpected headline '%s'", first.Headline)
	}
	if first.PublishedAt == nil {
		t.Error("Expected parsed published date")
	}
	if len(first.Tags) < 2 || first.Tags[0] != "CURRENCY" {
		t.Errorf("Expected category tag first in tags, got %v", first.Tags)
	}

	second := items[1]
	if second.ID != "https://example.com/undated" {
		t.Errorf("Expected link fallback for missing GUID, got '%s'", second.ID)
	}
	if second.PublishedAt != nil {
		t.Error("Item without pubDate must have nil timestamp")
	}
}

func TestRSSSourceFetchLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	source := NewRSSSource(server.URL, "Test Agent", server.Client())

	items, err := source.Fetch(context.Background(), "CURRENCY", 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected the limit to cap results at 1, got %d", len(items))
	}
}

func TestRSSSourceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewRSSSource(server.URL, "Test Agent", server.Client())

	if _, err := source.Fetch(context.Background(), "CURRENCY", 10); err == nil {
		t.Error("Expected error for HTTP failure")
	}
}
