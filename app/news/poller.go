package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akobets/signal-comb/app/dedup"
	"github.com/akobets/signal-comb/app/metrics"
	"github.com/akobets/signal-comb/app/relay"
)

// Poller pulls candidate items per category, filters out stale and
// already-relayed ones, and fans the rest out to the configured news
// channels. It keeps no state between cycles other than the dedup store.
type Poller struct {
	categories   []Category
	store        *dedup.Store
	orchestrator *relay.Orchestrator
	targets      []relay.Target
	summarizer   *Summarizer // optional
	retention    time.Duration
	sendDelay    time.Duration
}

func NewPoller(categories []Category, store *dedup.Store, orchestrator *relay.Orchestrator,
	targets []relay.Target, summarizer *Summarizer, retention, sendDelay time.Duration) *Poller {
	return &Poller{
		categories:   categories,
		store:        store,
		orchestrator: orchestrator,
		targets:      targets,
		summarizer:   summarizer,
		retention:    retention,
		sendDelay:    sendDelay,
	}
}

// Categories returns the configured categories in iteration order
func (p *Poller) Categories() []Category {
	return p.categories
}

// RunCycle polls every enabled category once, in configured order. A failing
// category never aborts the ones after it.
func (p *Poller) RunCycle(ctx context.Context) {
	for _, cat := range p.categories {
		if !cat.Enabled {
			continue
		}
		if err := p.RunCategory(ctx, cat); err != nil {
			slog.Error("News category poll failed", "category", cat.Tag, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// RunCategory polls one category. The returned error covers the fetch only;
// per-item channel failures are logged and swallowed so the remaining
// candidates still go out.
func (p *Poller) RunCategory(ctx context.Context, cat Category) error {
	targets := cat.Targets
	if len(targets) == 0 {
		targets = p.targets
	}
	// Without targets nothing can be attempted, so nothing may be marked
	// sent either; items stay eligible until a channel is configured.
	if len(targets) == 0 {
		slog.Warn("No channels configured, skipping category", "category", cat.Tag)
		return nil
	}

	items, err := cat.Source.Fetch(ctx, cat.Tag, cat.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch news: %w", err)
	}

	cutoff := time.Now().Add(-p.retention)
	relayed := 0
	skippedStale := 0
	skippedSeen := 0

	for _, item := range items {
		// Stale items are skipped without marking, so a correction
		// re-published under the same id inside the window can still
		// be relayed later.
		if item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			skippedStale++
			continue
		}
		if item.PublishedAt == nil {
			slog.Debug("News item has no published date, relaying anyway",
				"category", cat.Tag, "item_id", item.ID)
		}

		if p.store.Seen(ctx, item.ID) {
			skippedSeen++
			continue
		}

		p.relayItem(ctx, cat, item, targets)
		relayed++

		// Pace successive sends so the transports are not hammered
		if p.sendDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.sendDelay):
			}
		}
	}

	slog.Info("News category polled",
		"category", cat.Tag,
		"total", len(items),
		"relayed", relayed,
		"stale", skippedStale,
		"seen", skippedSeen)

	return nil
}

// relayItem formats and fans out one item, then marks it sent regardless of
// channel outcome. Marking on attempt trades a rare lost notification for
// never re-spamming the same item on the next cycle.
func (p *Poller) relayItem(ctx context.Context, cat Category, item Item, targets []relay.Target) {
	if item.Summary == "" && p.summarizer != nil {
		item.Summary = p.summarizer.Run(ctx, item.Link)
	}

	msg := relay.Message{Text: FormatItem(item)}
	result := p.orchestrator.Send(ctx, msg, targets)
	if result.OK() {
		metrics.NewsRelayedTotal.WithLabelValues(cat.Tag).Inc()
	} else {
		slog.Warn("News item reached no channel", "category", cat.Tag, "item_id", item.ID)
	}

	p.store.MarkSent(ctx, item.ID, item.Headline, item.Tags)
}

// FormatItem renders one news item as an outbound message
func FormatItem(item Item) string {
	var b strings.Builder

	b.WriteString(item.Headline)
	if item.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Summary)
	}
	if item.PublishedAt != nil {
		b.WriteString("\n\n")
		b.WriteString(item.PublishedAt.Format("2006-01-02 15:04"))
	}
	if item.Link != "" {
		b.WriteString("\n")
		b.WriteString(item.Link)
	}

	return b.String()
}
