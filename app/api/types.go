package api

import (
	"context"

	"github.com/akobets/signal-comb/app/chart"
	"github.com/akobets/signal-comb/app/database"
	"github.com/akobets/signal-comb/app/signal"
)

type SignalRelayInterface interface {
	HandleSignal(ctx context.Context, payload []byte) (*signal.Outcome, error)
}

var _ SignalRelayInterface = (*signal.Relay)(nil)

type Handler struct {
	relay         SignalRelayInterface
	channels      []signal.Channel
	chartProvider chart.Provider
	itemRepo      database.RelayedItemRepository
	categoryCount int
}

// WebhookResponse is the structured outcome returned to webhook callers
type WebhookResponse struct {
	Success       bool            `json:"success"`
	Channels      map[string]bool `json:"channels,omitempty"`
	ChartAttached bool            `json:"chart_attached"`
	Timestamp     string          `json:"timestamp"`
	Error         string          `json:"error,omitempty"`
}
