package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var _ RelayedItemRepository = (*SQLRelayedItemRepository)(nil)

// SQLRelayedItemRepository persists relayed item records in SQLite
type SQLRelayedItemRepository struct {
	db *DB
}

func NewSQLRelayedItemRepository(db *DB) *SQLRelayedItemRepository {
	return &SQLRelayedItemRepository{db: db}
}

func (r *SQLRelayedItemRepository) Has(ctx context.Context, itemID string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx,
		`SELECT item_id FROM relayed_items WHERE item_id = ? LIMIT 1`, itemID).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check relayed item: %w", err)
	}
	return true, nil
}

// MarkSent upserts the record for itemID. Re-marking an already recorded item
// is a no-op, which keeps the call idempotent under duplicate writes.
func (r *SQLRelayedItemRepository) MarkSent(ctx context.Context, itemID, headline string, categoryTags []string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO relayed_items (item_id, headline, category_tags, relayed_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (item_id) DO NOTHING
	`, itemID, headline, strings.Join(categoryTags, ","))
	if err != nil {
		return fmt.Errorf("failed to mark item sent: %w", err)
	}
	return nil
}

func (r *SQLRelayedItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relayed_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count relayed items: %w", err)
	}
	return count, nil
}

// get returns the stored record for itemID, or nil when absent; the relay
// decision goes through Has.
func (r *SQLRelayedItemRepository) get(ctx context.Context, itemID string) (*RelayedItem, error) {
	var item RelayedItem
	var tags string
	err := r.db.QueryRowContext(ctx, `
		SELECT item_id, headline, category_tags, relayed_at
		FROM relayed_items WHERE item_id = ?
	`, itemID).Scan(&item.ItemID, &item.Headline, &tags, &item.RelayedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relayed item: %w", err)
	}
	if tags != "" {
		item.CategoryTags = strings.Split(tags, ",")
	}
	return &item, nil
}
