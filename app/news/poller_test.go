package news

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akobets/signal-comb/app/dedup"
	"github.com/akobets/signal-comb/app/relay"
)

type memoryRepository struct {
	records map[string]bool
	marks   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]bool)}
}

func (m *memoryRepository) Has(ctx context.Context, itemID string) (bool, error) {
	return m.records[itemID], nil
}

func (m *memoryRepository) MarkSent(ctx context.Context, itemID, headline string, tags []string) error {
	m.marks++
	m.records[itemID] = true
	return nil
}

func (m *memoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}

type stubSource struct {
	items []Item
	err   error
}

func (s *stubSource) Fetch(ctx context.Context, category string, limit int) ([]Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

type countingNotifier struct {
	kind  string
	err   error
	calls int32
}

func (c *countingNotifier) Kind() string { return c.kind }

func (c *countingNotifier) Send(ctx context.Context, recipient string, msg relay.Message) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return "", c.err
	}
	return "id", nil
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestPoller(repo *memoryRepository, source Source, notifier relay.Notifier) *Poller {
	cat := Category{Tag: "CURRENCY", Enabled: true, Limit: 20, Source: source}
	return NewPoller(
		[]Category{cat},
		dedup.NewStore(repo),
		relay.NewOrchestrator(time.Second),
		[]relay.Target{{Notifier: notifier, Recipient: "-100"}},
		nil,
		48*time.Hour,
		0,
	)
}

func TestRunCycleRelaysNewItems(t *testing.T) {
	repo := newMemoryRepository()
	repo.records["old-item"] = true

	source := &stubSource{items: []Item{
		{ID: "old-item", Headline: "Already sent", PublishedAt: timePtr(time.Now())},
		{ID: "new-item", Headline: "Fresh", PublishedAt: timePtr(time.Now())},
	}}
	notifier := &countingNotifier{kind: "telegram"}

	poller := newTestPoller(repo, source, notifier)
	poller.RunCycle(context.Background())

	if got := atomic.LoadInt32(&notifier.calls); got != 1 {
		t.Errorf("Expected exactly one fan-out invocation, got %d", got)
	}
	if !repo.records["new-item"] {
		t.Error("New item should have been marked sent")
	}
	count, _ := repo.Count(context.Background())
	if count != 2 {
		t.Errorf("Expected exactly one new record (2 total), got %d", count)
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	repo := newMemoryRepository()
	source := &stubSource{items: []Item{
		{ID: "item-1", Headline: "Once only", PublishedAt: timePtr(time.Now())},
	}}
	notifier := &countingNotifier{kind: "telegram"}

	poller := newTestPoller(repo, source, notifier)
	poller.RunCycle(context.Background())
	poller.RunCycle(context.Background())

	if got := atomic.LoadInt32(&notifier.calls); got != 1 {
		t.Errorf("Second cycle must not re-send, got %d sends", got)
	}
}

func TestRunCycleSkipsStaleItems(t *testing.T) {
	repo := newMemoryRepository()
	source := &stubSource{items: []Item{
		{ID: "stale", Headline: "Old news", PublishedAt: timePtr(time.Now().Add(-72 * time.Hour))},
	}}
	notifier := &countingNotifier{kind: "telegram"}

	poller := newTestPoller(repo, source, notifier) // 48h retention
	poller.RunCycle(context.Background())

	if atomic.LoadInt32(&notifier.calls) != 0 {
		t.Error("Stale item must never reach the fan-out")
	}
	if repo.marks != 0 {
		t.Error("Stale item must not be marked sent")
	}
}

func TestRunCycleKeepsItemsWithoutTimestamp(t *testing.T) {
	repo := newMemoryRepository()
	source := &stubSource{items: []Item{
		{ID: "undated", Headline: "No date"},
	}}
	notifier := &countingNotifier{kind: "telegram"}

	poller := newTestPoller(repo, source, notifier)
	poller.RunCycle(context.Background())

	if atomic.LoadInt32(&notifier.calls) != 1 {
		t.Error("Item without published date must still be relayed")
	}
}

func TestRunCycleMarksOnAttemptEvenWhenAllChannelsFail(t *testing.T) {
	repo := newMemoryRepository()
	source := &stubSource{items: []Item{
		{ID: "item-1", Headline: "Failing send", PublishedAt: timePtr(time.Now())},
	}}
	notifier := &countingNotifier{kind: "telegram", err: errors.New("down")}

	poller := newTestPoller(repo, source, notifier)
	poller.RunCycle(context.Background())

	if !repo.records["item-1"] {
		t.Error("Attempted item must be marked sent regardless of channel outcome")
	}
}

func TestRunCycleFetchFailureDoesNotAbortLaterCategories(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &countingNotifier{kind: "telegram"}

	broken := &stubSource{err: errors.New("news API down")}
	working := &stubSource{items: []Item{
		{ID: "ok-item", Headline: "Still delivered", PublishedAt: timePtr(time.Now())},
	}}

	poller := NewPoller(
		[]Category{
			{Tag: "CURRENCY", Enabled: true, Limit: 20, Source: broken},
			{Tag: "STOCKS", Enabled: true, Limit: 20, Source: working},
		},
		dedup.NewStore(repo),
		relay.NewOrchestrator(time.Second),
		[]relay.Target{{Notifier: notifier, Recipient: "-100"}},
		nil,
		48*time.Hour,
		0,
	)

	poller.RunCycle(context.Background())

	if atomic.LoadInt32(&notifier.calls) != 1 {
		t.Error("Second category must still be polled after the first one fails")
	}
}

func TestRunCycleSkipsDisabledCategories(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &countingNotifier{kind: "telegram"}
	source := &stubSource{items: []Item{
		{ID: "x", Headline: "x", PublishedAt: timePtr(time.Now())},
	}}

	poller := NewPoller(
		[]Category{{Tag: "CURRENCY", Enabled: false, Limit: 20, Source: source}},
		dedup.NewStore(repo),
		relay.NewOrchestrator(time.Second),
		[]relay.Target{{Notifier: notifier, Recipient: "-100"}},
		nil,
		48*time.Hour,
		0,
	)

	poller.RunCycle(context.Background())

	if atomic.LoadInt32(&notifier.calls) != 0 {
		t.Error("Disabled category must not be polled")
	}
}

func TestRunCycleWithoutTargetsMarksNothing(t *testing.T) {
	repo := newMemoryRepository()
	source := &stubSource{items: []Item{
		{ID: "item-1", Headline: "Nowhere to go", PublishedAt: timePtr(time.Now())},
	}}

	poller := NewPoller(
		[]Category{{Tag: "CURRENCY", Enabled: true, Limit: 20, Source: source}},
		dedup.NewStore(repo),
		relay.NewOrchestrator(time.Second),
		nil, // no channels configured
		nil,
		48*time.Hour,
		0,
	)

	poller.RunCycle(context.Background())

	if repo.marks != 0 {
		t.Errorf("Item must not be marked sent when no channel exists to attempt, marks=%d", repo.marks)
	}
	if repo.records["item-1"] {
		t.Error("Item must stay eligible for relay until a channel is configured")
	}
}

func TestRunCycleCategoryTargetsOverrideDefaults(t *testing.T) {
	repo := newMemoryRepository()
	defaultNotifier := &countingNotifier{kind: "telegram"}
	overrideNotifier := &countingNotifier{kind: "telegram"}
	source := &stubSource{items: []Item{
		{ID: "item-1", Headline: "Routed", PublishedAt: timePtr(time.Now())},
	}}

	poller := NewPoller(
		[]Category{{
			Tag:     "STOCKS",
			Enabled: true,
			Limit:   20,
			Source:  source,
			Targets: []relay.Target{{Notifier: overrideNotifier, Recipient: "-200"}},
		}},
		dedup.NewStore(repo),
		relay.NewOrchestrator(time.Second),
		[]relay.Target{{Notifier: defaultNotifier, Recipient: "-100"}},
		nil,
		48*time.Hour,
		0,
	)

	poller.RunCycle(context.Background())

	if atomic.LoadInt32(&overrideNotifier.calls) != 1 {
		t.Error("Category with its own targets must use them")
	}
	if atomic.LoadInt32(&defaultNotifier.calls) != 0 {
		t.Error("Default targets must not receive sends for an overridden category")
	}
}

func TestFormatItem(t *testing.T) {
	published := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	item := Item{
		Headline:    "Rates cut again",
		Summary:     "The central bank cut rates by 25bp.",
		PublishedAt: &published,
		Link:        "https://example.com/rates",
	}

	got := FormatItem(item)
	want := "Rates cut again\n\nThe central bank cut rates by 25bp.\n\n2024-03-15 09:00\nhttps://example.com/rates"
	if got != want {
		t.Errorf("FormatItem() = %q, want %q", got, want)
	}
}

func TestFormatItemMinimal(t *testing.T) {
	got := FormatItem(Item{Headline: "Just a headline"})
	if got != "Just a headline" {
		t.Errorf("FormatItem() = %q, want bare headline", got)
	}
}
