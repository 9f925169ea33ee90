package signal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/akobets/signal-comb/app/chart"
	"github.com/akobets/signal-comb/app/metrics"
	"github.com/akobets/signal-comb/app/relay"
)

// ChannelNotifier is a notifier whose configuration validity can be checked
// without a live probe.
type ChannelNotifier interface {
	relay.Notifier
	Configured() bool
}

// Channel binds a notifier kind to its configured default recipients
type Channel struct {
	Notifier          ChannelNotifier
	DefaultRecipients []string
}

// Outcome reports the per-kind results of one signal relay
type Outcome struct {
	Success       bool
	Kinds         map[string]bool
	ChartAttached bool
}

// Relay validates inbound trading signals, optionally attaches a chart
// snapshot, and fans the formatted message out per channel kind. Each kind
// is its own failure domain: the relay succeeds when any kind reaches at
// least one recipient.
type Relay struct {
	channels      []Channel
	chartProvider chart.Provider
	orchestrator  *relay.Orchestrator
	chartTimeout  time.Duration
	now           func() time.Time
}

func NewRelay(channels []Channel, chartProvider chart.Provider, orchestrator *relay.Orchestrator, chartTimeout time.Duration) *Relay {
	return &Relay{
		channels:      channels,
		chartProvider: chartProvider,
		orchestrator:  orchestrator,
		chartTimeout:  chartTimeout,
		now:           time.Now,
	}
}

// HandleSignal processes one webhook payload. A *ValidationError is returned
// for client mistakes; an Outcome with Success=false means every targeted
// channel kind failed.
func (r *Relay) HandleSignal(ctx context.Context, payload []byte) (*Outcome, error) {
	sig, err := ParsePayload(payload, r.now)
	if err != nil {
		metrics.SignalsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	targetsByKind := r.resolveTargets(sig)
	if len(targetsByKind) == 0 {
		metrics.SignalsTotal.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Field: "recipient", Reason: "no recipients configured or supplied"}
	}

	msg := relay.Message{Text: Format(sig)}
	if image := r.fetchChart(ctx, sig.Symbol); image != nil {
		msg.Image = image
		msg.ImageName = sig.Symbol + ".png"
	}

	outcome := &Outcome{
		Kinds:         make(map[string]bool, len(targetsByKind)),
		ChartAttached: msg.HasImage(),
	}

	// Channel kinds are independent failure domains; dispatch them
	// concurrently and collect per-kind success.
	var wg sync.WaitGroup
	var mu sync.Mutex
	for kind, targets := range targetsByKind {
		wg.Add(1)
		go func(kind string, targets []relay.Target) {
			defer wg.Done()
			result := r.orchestrator.Send(ctx, msg, targets)
			mu.Lock()
			outcome.Kinds[kind] = result.OK()
			mu.Unlock()
		}(kind, targets)
	}
	wg.Wait()

	for _, ok := range outcome.Kinds {
		if ok {
			outcome.Success = true
			break
		}
	}

	if outcome.Success {
		metrics.SignalsTotal.WithLabelValues("relayed").Inc()
	} else {
		metrics.SignalsTotal.WithLabelValues("failed").Inc()
	}

	slog.Info("Signal relayed",
		"symbol", sig.Symbol,
		"action", sig.Action,
		"success", outcome.Success,
		"chart_attached", outcome.ChartAttached)

	return outcome, nil
}

// resolveTargets builds the per-kind target lists. A per-request override
// replaces the configured defaults for that kind; kinds that end up with no
// recipients are not attempted.
func (r *Relay) resolveTargets(sig *Signal) map[string][]relay.Target {
	targetsByKind := make(map[string][]relay.Target)

	for _, ch := range r.channels {
		recipients := ch.DefaultRecipients
		switch ch.Notifier.Kind() {
		case "telegram":
			if len(sig.Overrides.TelegramChatIDs) > 0 {
				recipients = sig.Overrides.TelegramChatIDs
			}
		case "line":
			if len(sig.Overrides.LineRecipients) > 0 {
				recipients = sig.Overrides.LineRecipients
			}
		}

		if len(recipients) == 0 || !ch.Notifier.Configured() {
			continue
		}

		targets := make([]relay.Target, 0, len(recipients))
		for _, recipient := range recipients {
			targets = append(targets, relay.Target{Notifier: ch.Notifier, Recipient: recipient})
		}
		targetsByKind[ch.Notifier.Kind()] = targets
	}

	return targetsByKind
}

// fetchChart acquires a chart snapshot on a best-effort basis; any failure
// means the signal goes out without an image.
func (r *Relay) fetchChart(ctx context.Context, symbol string) []byte {
	if r.chartProvider == nil || !r.chartProvider.Configured() {
		return nil
	}

	chartCtx, cancel := context.WithTimeout(ctx, r.chartTimeout)
	defer cancel()

	image, err := r.chartProvider.Get(chartCtx, symbol)
	if err != nil {
		slog.Warn("Chart acquisition failed, relaying without image", "symbol", symbol, "error", err)
		return nil
	}
	return image
}
