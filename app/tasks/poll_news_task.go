package tasks

import (
	"context"
	"log/slog"

	"github.com/akobets/signal-comb/app/news"
)

type PollNewsTask struct {
	Task
	Category news.Category
	poller   *news.Poller
}

func NewPollNewsTask(category news.Category, poller *news.Poller) *PollNewsTask {
	return &PollNewsTask{
		Task:     NewTask(TaskTypePollNews, category.Tag),
		Category: category,
		poller:   poller,
	}
}

func (t *PollNewsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Category.Enabled {
		slog.Debug("Category disabled, skipping", "category", t.Category.Tag)
		return nil
	}

	if err := t.poller.RunCategory(ctx, t.Category); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "PollNews",
		"category", t.Category.Tag,
		"duration", t.GetDuration())

	return nil
}
