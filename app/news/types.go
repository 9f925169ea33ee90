package news

import (
	"context"
	"time"

	"github.com/akobets/signal-comb/app/relay"
)

// Item is one news article as delivered by a source. Only its ID (plus
// headline and tags for diagnostics) is ever persisted.
type Item struct {
	ID          string
	Headline    string
	Summary     string
	PublishedAt *time.Time // sources do not always carry a timestamp
	Tags        []string
	Link        string
}

// Source delivers candidate items for a category, newest first
type Source interface {
	Fetch(ctx context.Context, category string, limit int) ([]Item, error)
}

// Category binds a configured category tag to its source and relay targets
type Category struct {
	Tag     string
	Enabled bool
	Limit   int
	Source  Source
	Targets []relay.Target // overrides the poller defaults when non-empty
}
