package dedup

import (
	"context"
	"log/slog"

	"github.com/akobets/signal-comb/app/database"
	"github.com/akobets/signal-comb/app/metrics"
)

// Store decides whether a news item was already relayed. It wraps the
// persistent repository with fail-open semantics: a read failure counts as
// "not yet sent" and a write failure is swallowed. A store outage may cause
// a duplicate notification; it never causes a dropped one.
type Store struct {
	repo database.RelayedItemRepository
}

func NewStore(repo database.RelayedItemRepository) *Store {
	return &Store{repo: repo}
}

// Seen reports whether itemID was already relayed. Repository errors are
// logged and treated as unseen.
func (s *Store) Seen(ctx context.Context, itemID string) bool {
	seen, err := s.repo.Has(ctx, itemID)
	if err != nil {
		metrics.DedupReadFailures.Inc()
		slog.Warn("Dedup store read failed, treating item as unseen", "item_id", itemID, "error", err)
		return false
	}
	return seen
}

// MarkSent records itemID as relayed. Best effort: a failed mark is logged
// and may cause a future re-send.
func (s *Store) MarkSent(ctx context.Context, itemID, headline string, categoryTags []string) {
	if err := s.repo.MarkSent(ctx, itemID, headline, categoryTags); err != nil {
		slog.Warn("Dedup store write failed", "item_id", itemID, "error", err)
	}
}
