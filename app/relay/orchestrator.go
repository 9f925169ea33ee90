package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/akobets/signal-comb/app/metrics"
)

// Orchestrator fans one message out to a set of targets. Every target is
// attempted; a failing target never prevents the others from being tried,
// and the aggregate succeeds when at least one target does. The relay
// prefers a possible duplicate over total silence, so there are no retries
// and no short-circuiting here.
type Orchestrator struct {
	sendTimeout time.Duration
}

func NewOrchestrator(sendTimeout time.Duration) *Orchestrator {
	return &Orchestrator{sendTimeout: sendTimeout}
}

// Send dispatches msg to all targets concurrently. Results are returned in
// target order regardless of completion order.
func (o *Orchestrator) Send(ctx context.Context, msg Message, targets []Target) Result {
	results := make([]ChannelResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			results[i] = o.sendOne(ctx, msg, target)
		}(i, target)
	}
	wg.Wait()

	return Result{Channels: results}
}

func (o *Orchestrator) sendOne(ctx context.Context, msg Message, target Target) ChannelResult {
	result := ChannelResult{
		Kind:      target.Notifier.Kind(),
		Recipient: target.Recipient,
	}

	sendCtx := ctx
	if o.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, o.sendTimeout)
		defer cancel()
	}

	deliveryID, err := target.Notifier.Send(sendCtx, target.Recipient, msg)
	if err != nil {
		result.Err = err.Error()
		metrics.SendsTotal.WithLabelValues(result.Kind, "error").Inc()
		slog.Warn("Channel send failed", "kind", result.Kind, "recipient", target.Recipient, "error", err)
		return result
	}

	result.Success = true
	result.DeliveryID = deliveryID
	metrics.SendsTotal.WithLabelValues(result.Kind, "ok").Inc()
	slog.Debug("Channel send succeeded", "kind", result.Kind, "recipient", target.Recipient, "delivery_id", deliveryID)

	return result
}
