package database

import (
	"context"
	"time"
)

// RelayedItem is the persisted record of a news item that was already
// relayed. Presence of a record means the item is never relayed again.
type RelayedItem struct {
	ItemID       string
	Headline     string
	CategoryTags []string
	RelayedAt    time.Time
}

type RelayedItemRepository interface {
	Has(ctx context.Context, itemID string) (bool, error)
	MarkSent(ctx context.Context, itemID, headline string, categoryTags []string) error
	Count(ctx context.Context) (int, error)
}
